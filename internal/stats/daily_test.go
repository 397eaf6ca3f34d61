package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/versetype/internal/model"
)

func TestDailyLogGroupsByLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	records := []model.TypedVerse{
		// 2024-06-02 01:00 UTC is still June 1st at UTC-5.
		{Verse: 1, CreatedAt: time.Date(2024, 6, 2, 1, 0, 0, 0, time.UTC), Stats: &model.VerseStats{WPM: floatp(40)}},
		{Verse: 3, CreatedAt: time.Date(2024, 6, 2, 18, 0, 0, 0, time.UTC), Stats: &model.VerseStats{WPM: floatp(60)}},
		{Verse: 2, CreatedAt: time.Date(2024, 6, 2, 15, 0, 0, 0, time.UTC)},
	}

	days := DailyLog(records, loc)
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Date.Day() != 2 || days[1].Date.Day() != 1 {
		t.Fatalf("expected newest day first, got %v then %v", days[0].Date, days[1].Date)
	}
	if len(days[0].Verses) != 2 || days[0].Verses[0].Verse != 2 {
		t.Fatalf("expected verses in typing order, got %+v", days[0].Verses)
	}
	if days[0].Summary.WPM == nil || !approx(*days[0].Summary.WPM, 60) {
		t.Fatalf("expected day wpm 60, got %v", days[0].Summary.WPM)
	}

	trend := WPMTrend(days)
	if len(trend) != 2 || trend[0] != 40 || trend[1] != 60 {
		t.Fatalf("unexpected trend %v", trend)
	}
}

func TestWPMTrendSkipsDaysWithoutTiming(t *testing.T) {
	days := []Day{
		{Summary: Summary{Verses: 1}},
		{Summary: Summary{Verses: 2, WPM: floatp(30)}},
	}
	trend := WPMTrend(days)
	if len(trend) != 1 || trend[0] != 30 {
		t.Fatalf("unexpected trend %v", trend)
	}
}
