package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/versetype/internal/bible"
	"github.com/verte-zerg/versetype/internal/model"
	"github.com/verte-zerg/versetype/internal/store"
)

func testMetadata() bible.Metadata {
	return bible.New([]bible.Book{
		{Name: "Ruth", Slug: "ruth", Verses: []int{2, 1}},
		{Name: "Jonah", Slug: "jonah", Verses: []int{1}},
	})
}

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "versetype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	refs := []model.VerseRef{{Book: "ruth", Chapter: 1, Verse: 1}, {Book: "ruth", Chapter: 1, Verse: 2}, {Book: "ruth", Chapter: 2, Verse: 1}}
	for i, ref := range refs {
		tv := model.TypedVerse{
			Translation: "esv",
			Book:        ref.Book,
			Chapter:     ref.Chapter,
			Verse:       ref.Verse,
			CreatedAt:   start.Add(time.Duration(i) * time.Minute),
			Stats:       &model.VerseStats{WPM: floatp(float64(40 + 10*i))},
		}
		if _, err := st.InsertTypedVerse(ctx, tv); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if _, err := st.InsertTypedVerse(ctx, model.TypedVerse{Translation: "kjv", Book: "jonah", Chapter: 1, Verse: 1, CreatedAt: start}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	report, err := BuildReport(ctx, st, model.HistoryConfig{Translation: "esv"}, testMetadata(), nil)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(report.Records))
	}
	ruth, ok := report.Overview.Book("ruth")
	if !ok {
		t.Fatalf("expected ruth overview")
	}
	if ruth.Prestige != 1 || ruth.Percentage != 0 {
		t.Fatalf("expected a finished pass, got prestige %d at %d%%", ruth.Prestige, ruth.Percentage)
	}
	if report.Summary.WPM == nil || !approx(*report.Summary.WPM, 50) {
		t.Fatalf("expected wpm 50, got %v", report.Summary.WPM)
	}
	if len(report.Days) != 1 {
		t.Fatalf("expected one day, got %d", len(report.Days))
	}
}

func TestRenderOverview(t *testing.T) {
	records := []model.TypedVerse{
		{Translation: "esv", Book: "ruth", Chapter: 1, Verse: 1, CreatedAt: start},
	}
	report := NewReport("esv", records, testMetadata(), time.UTC, nil)

	var buf bytes.Buffer
	if err := RenderOverview(&buf, report.Overview, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one book, got %q", buf.String())
	}
	if lines[0] != "Book Prestige Typed Verses Progress" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "Ruth        0     1      3      33%" {
		t.Fatalf("unexpected row %q", lines[1])
	}

	buf.Reset()
	if err := RenderOverview(&buf, report.Overview, true); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Jonah") {
		t.Fatalf("expected all books listed, got %q", buf.String())
	}
}

func TestRenderOverviewEmpty(t *testing.T) {
	report := NewReport("esv", nil, testMetadata(), time.UTC, nil)
	var buf bytes.Buffer
	if err := RenderOverview(&buf, report.Overview, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No verses typed in esv yet.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderChapters(t *testing.T) {
	records := []model.TypedVerse{
		{Translation: "esv", Book: "ruth", Chapter: 2, Verse: 1, CreatedAt: start},
	}
	report := NewReport("esv", records, testMetadata(), time.UTC, nil)
	ruth, _ := report.Overview.Book("ruth")

	var buf bytes.Buffer
	if err := RenderChapters(&buf, ruth); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Ruth (prestige 0, 33%)\n") {
		t.Fatalf("unexpected title in %q", out)
	}
	if !strings.Contains(out, "      2     1      1     100%") {
		t.Fatalf("expected finished chapter 2 row in %q", out)
	}
}

func TestRenderLogShowsMissingStats(t *testing.T) {
	day := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	days := []Day{
		{Date: day, Summary: Summary{Verses: 2, WPM: floatp(52.24), Accuracy: floatp(98)}},
		{Date: day.AddDate(0, 0, -1), Summary: Summary{Verses: 1, WPM: floatp(40)}},
	}
	var buf bytes.Buffer
	if err := RenderLog(&buf, days, 1); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2024-06-02      2 52.2    98.0%         -") {
		t.Fatalf("unexpected log row in %q", out)
	}
	if !strings.Contains(out, "WPM trend:  @") {
		t.Fatalf("expected trend line in %q", out)
	}
}
