package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/siteplan/core/calendar"
	"github.com/kilianp07/siteplan/core/scheduler"
)

// CalendarConfig defines how views are laid out and how copies are named.
type CalendarConfig struct {
	// Timezone is an IANA name used to cut days; defaults to UTC.
	Timezone string `json:"timezone"`
	// WeekStart is "monday" or "sunday".
	WeekStart string `json:"week_start"`
	// UnitsPerHour scales offsets and lengths of day and week views.
	UnitsPerHour    float64 `json:"units_per_hour"`
	DuplicateSuffix string  `json:"duplicate_suffix"`
}

// SetDefaults applies sane defaults.
func (c *CalendarConfig) SetDefaults() {
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.WeekStart == "" {
		c.WeekStart = "monday"
	}
	if c.UnitsPerHour == 0 {
		c.UnitsPerHour = 60
	}
	if c.DuplicateSuffix == "" {
		c.DuplicateSuffix = scheduler.DefaultDuplicateSuffix
	}
}

// Validate checks the timezone, week start and axis scale.
func (c CalendarConfig) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("calendar timezone: %w", err)
	}
	if _, err := calendar.ParseWeekStart(c.WeekStart); err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	if err := c.Axis().Validate(); err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	return nil
}

// Navigator builds the navigator described by the configuration. It assumes
// Validate succeeded and falls back to UTC and Monday otherwise.
func (c CalendarConfig) Navigator() calendar.Navigator {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		loc = time.UTC
	}
	ws, _ := calendar.ParseWeekStart(c.WeekStart)
	return calendar.NewNavigator(ws, loc)
}

// Axis returns the time axis scale.
func (c CalendarConfig) Axis() calendar.Axis {
	return calendar.Axis{UnitsPerHour: c.UnitsPerHour}
}

// Scheduler returns the coordinator configuration.
func (c CalendarConfig) Scheduler() scheduler.Config {
	return scheduler.Config{DuplicateSuffix: c.DuplicateSuffix}
}
