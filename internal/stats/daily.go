// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"
	"time"

	"github.com/verte-zerg/versetype/internal/model"
)

// Day groups the verses typed on one local calendar day.
type Day struct {
	Date    time.Time
	Verses  []model.TypedVerse
	Summary Summary
}

// DailyLog groups records by calendar day in loc, newest day first. Verses
// within a day are in typing order.
func DailyLog(records []model.TypedVerse, loc *time.Location) []Day {
	if loc == nil {
		loc = time.Local
	}
	byDay := map[time.Time][]model.TypedVerse{}
	for _, rec := range records {
		local := rec.CreatedAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		byDay[day] = append(byDay[day], rec)
	}
	days := make([]Day, 0, len(byDay))
	for date, verses := range byDay {
		sort.SliceStable(verses, func(i, j int) bool {
			return verses[i].CreatedAt.Before(verses[j].CreatedAt)
		})
		days = append(days, Day{Date: date, Verses: verses, Summary: Summarize(verses)})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

// WPMTrend returns the daily average WPM oldest first, skipping days without
// timing data.
func WPMTrend(days []Day) []float64 {
	out := make([]float64, 0, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		if wpm := days[i].Summary.WPM; wpm != nil {
			out = append(out, *wpm)
		}
	}
	return out
}
