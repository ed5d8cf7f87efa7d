package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceMonthClampsDay(t *testing.T) {
	v := ViewState{Mode: ViewMonth, Anchor: time.Date(2024, 1, 31, 10, 30, 0, 0, time.UTC)}
	got := Advance(v, Next)
	assert.Equal(t, time.Date(2024, 2, 29, 10, 30, 0, 0, time.UTC), got.Anchor)

	v.Anchor = time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), Advance(v, Next).Anchor)

	v.Anchor = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Advance(v, Prev).Anchor)
}

func TestAdvanceMonthAcrossYear(t *testing.T) {
	v := ViewState{Mode: ViewMonth, Anchor: time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Advance(v, Next).Anchor)
	v.Anchor = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC), Advance(v, Prev).Anchor)
}

func TestAdvanceDayAndWeek(t *testing.T) {
	anchor := time.Date(2024, 2, 28, 8, 0, 0, 0, time.UTC)
	day := Advance(ViewState{Mode: ViewDay, Anchor: anchor}, Next)
	assert.Equal(t, time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC), day.Anchor)
	assert.Equal(t, ViewDay, day.Mode)

	week := Advance(ViewState{Mode: ViewWeek, Anchor: anchor}, Prev)
	assert.Equal(t, time.Date(2024, 2, 21, 8, 0, 0, 0, time.UTC), week.Anchor)
}

func TestAdvanceRoundTrip(t *testing.T) {
	anchor := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	for _, m := range []ViewMode{ViewDay, ViewWeek, ViewMonth} {
		v := ViewState{Mode: m, Anchor: anchor}
		assert.Equal(t, anchor, Advance(Advance(v, Next), Prev).Anchor, m.String())
	}
}

func TestVisibleRangeWeek(t *testing.T) {
	nav := NewNavigator(time.Monday, time.UTC)
	// 2024-05-08 is a Wednesday.
	start, end := nav.VisibleRange(ViewState{Mode: ViewWeek, Anchor: time.Date(2024, 5, 8, 15, 0, 0, 0, time.UTC)})
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), end)

	nav.WeekStart = time.Sunday
	start, _ = nav.VisibleRange(ViewState{Mode: ViewWeek, Anchor: time.Date(2024, 5, 8, 15, 0, 0, 0, time.UTC)})
	assert.Equal(t, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), start)
}

func TestVisibleRangeMonthGrid(t *testing.T) {
	nav := NewNavigator(time.Monday, time.UTC)
	start, end := nav.VisibleRange(ViewState{Mode: ViewMonth, Anchor: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)})
	assert.Equal(t, time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), end)
	days := nav.Days(ViewState{Mode: ViewMonth, Anchor: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)})
	assert.Len(t, days, 35)
	assert.Equal(t, 0, len(days)%7)
}

func TestVisibleRangeDayInLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	nav := NewNavigator(time.Monday, loc)
	// 23:30 UTC on the 9th is already the 10th in Paris.
	start, end := nav.VisibleRange(ViewState{Mode: ViewDay, Anchor: time.Date(2024, 5, 9, 23, 30, 0, 0, time.UTC)})
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2024, 5, 11, 0, 0, 0, 0, loc), end)
}

func TestToday(t *testing.T) {
	nav := NewNavigator(time.Monday, time.UTC)
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	v := nav.Today(ViewState{Mode: ViewMonth, Anchor: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}, now)
	assert.Equal(t, ViewMonth, v.Mode)
	assert.True(t, v.Anchor.Equal(now))
}

func TestParsers(t *testing.T) {
	m, err := ParseViewMode("Month")
	require.NoError(t, err)
	assert.Equal(t, ViewMonth, m)
	_, err = ParseViewMode("year")
	assert.Error(t, err)

	wd, err := ParseWeekStart("sunday")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, wd)
	_, err = ParseWeekStart("friday")
	assert.Error(t, err)

	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())
	assert.Equal(t, Date{2024, time.March, 1}, d.AddDays(1))
	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)
}
