package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/versetype/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "versetype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListTypedVerses(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	wpm, acc := 42.5, 97.0
	first := model.TypedVerse{
		Translation: "esv",
		Book:        "john",
		Chapter:     3,
		Verse:       16,
		CreatedAt:   start.Add(500 * time.Millisecond),
		Keystrokes: []model.Keystroke{
			{Key: "F", Time: start},
			{Key: "o", Time: start.Add(200 * time.Millisecond)},
		},
		Stats: &model.VerseStats{WPM: &wpm, Accuracy: &acc},
	}
	id, err := st.InsertTypedVerse(ctx, first)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	legacy := model.TypedVerse{Translation: "esv", Book: "john", Chapter: 3, Verse: 17, CreatedAt: start.Add(time.Second)}
	if _, err := st.InsertTypedVerse(ctx, legacy); err != nil {
		t.Fatalf("insert legacy: %v", err)
	}
	other := model.TypedVerse{ID: "fixed", Translation: "kjv", Book: "genesis", Chapter: 1, Verse: 1, CreatedAt: start}
	if _, err := st.InsertTypedVerse(ctx, other); err != nil {
		t.Fatalf("insert other: %v", err)
	}

	got, err := st.ListTypedVerses(ctx, model.HistoryConfig{Translation: "esv"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 esv verses, got %d", len(got))
	}
	if got[0].ID != id || got[0].Verse != 16 || got[1].Verse != 17 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !got[0].CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", got[0].CreatedAt, first.CreatedAt)
	}
	if len(got[0].Keystrokes) != 2 || got[0].Keystrokes[1].Key != "o" {
		t.Fatalf("keystrokes not restored: %+v", got[0].Keystrokes)
	}
	if got[0].Stats == nil || got[0].Stats.WPM == nil || *got[0].Stats.WPM != wpm {
		t.Fatalf("wpm not restored: %+v", got[0].Stats)
	}
	if got[0].Stats.CorrectedAccuracy != nil {
		t.Fatalf("expected nil corrected accuracy")
	}
	if got[1].Stats != nil || got[1].Keystrokes != nil {
		t.Fatalf("expected legacy verse without stats: %+v", got[1])
	}
}

func TestListTypedVersesFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, book := range []string{"ruth", "ruth", "jonah"} {
		tv := model.TypedVerse{Translation: "esv", Book: book, Chapter: 1, Verse: i + 1, CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour)}
		if _, err := st.InsertTypedVerse(ctx, tv); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	ruth, err := st.ListTypedVerses(ctx, model.HistoryConfig{Book: "ruth"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ruth) != 2 {
		t.Fatalf("expected 2 ruth verses, got %d", len(ruth))
	}

	since := base.Add(24 * time.Hour)
	recent, err := st.ListTypedVerses(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent verses, got %d", len(recent))
	}
}

func TestTimeOrderingAcrossFractions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	// Whole second after a fractional one must still sort later.
	for i, offset := range []time.Duration{time.Second, 500 * time.Millisecond} {
		tv := model.TypedVerse{Translation: "esv", Book: "ruth", Chapter: 1, Verse: i + 1, CreatedAt: base.Add(offset)}
		if _, err := st.InsertTypedVerse(ctx, tv); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	got, err := st.ListTypedVerses(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].Verse != 2 || got[1].Verse != 1 {
		t.Fatalf("unexpected order: %d, %d", got[0].Verse, got[1].Verse)
	}
}

func TestLastTypedVerse(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.LastTypedVerse(ctx, "esv"); err != nil || ok {
		t.Fatalf("expected no verse, got ok=%v err=%v", ok, err)
	}

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		tv := model.TypedVerse{Translation: "esv", Book: "ruth", Chapter: 1, Verse: i, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if _, err := st.InsertTypedVerse(ctx, tv); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	last, ok, err := st.LastTypedVerse(ctx, "esv")
	if err != nil || !ok {
		t.Fatalf("expected last verse, got ok=%v err=%v", ok, err)
	}
	if last.Verse != 3 {
		t.Fatalf("expected verse 3, got %d", last.Verse)
	}
}
