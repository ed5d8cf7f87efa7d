package scheduler

// DefaultDuplicateSuffix is appended to the title of duplicated events.
const DefaultDuplicateSuffix = " (copy)"

// Config holds coordinator options loaded from the calendar section.
type Config struct {
	DuplicateSuffix string `json:"duplicate_suffix"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.DuplicateSuffix == "" {
		c.DuplicateSuffix = DefaultDuplicateSuffix
	}
}
