package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/versetype/internal/bible"
	"github.com/verte-zerg/versetype/internal/model"
	"github.com/verte-zerg/versetype/internal/passage"
)

const ruthOne = `paragraphs:
  - verses:
      - number: 1
        text: In the
      - number: 2
        text: be light
`

const ruthTwo = `paragraphs:
  - verses:
      - number: 1
        text: And Naomi
`

type fakeRecorder struct {
	records []model.TypedVerse
	full    bool
}

func (f *fakeRecorder) Record(tv model.TypedVerse) bool {
	if f.full {
		return false
	}
	f.records = append(f.records, tv)
	return true
}

type fakeProvider struct {
	docs map[string]string
}

func (f fakeProvider) Passage(_ context.Context, translation, book string, chapter int) (passage.Passage, error) {
	doc, ok := f.docs[fmt.Sprintf("%s/%d", book, chapter)]
	if !ok {
		return passage.Passage{}, fmt.Errorf("%w: %s %d", passage.ErrNotFound, book, chapter)
	}
	return passage.Parse(translation, book, chapter, []byte(doc))
}

func testMetadata() bible.Metadata {
	return bible.New([]bible.Book{
		{Name: "Ruth", Slug: "ruth", Verses: []int{2, 1}},
		{Name: "Jonah", Slug: "jonah", Verses: []int{1}},
	})
}

func newTestModel(t *testing.T, rec Recorder, provider passage.Provider, cfg model.Config) *Model {
	t.Helper()
	p, err := passage.Parse("esv", "ruth", 1, []byte(ruthOne))
	if err != nil {
		t.Fatalf("parse passage: %v", err)
	}
	clock := time.Date(2024, 6, 2, 7, 0, 0, 0, time.UTC)
	m, err := NewModel(Options{
		Config:   cfg,
		Provider: provider,
		Metadata: testMetadata(),
		Recorder: rec,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}, p)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

// typeText sends text one key at a time and returns the last command.
func typeText(m *Model, text string) tea.Cmd {
	var last tea.Cmd
	for _, r := range text {
		var msg tea.KeyMsg
		switch r {
		case ' ':
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case '\b':
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		}
		_, cmd := m.Update(msg)
		if cmd != nil {
			last = cmd
		}
	}
	return last
}

func TestCompletingVerseRecordsStats(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(t, rec, nil, model.Config{})

	typeText(m, "In tx\bhe")

	if len(rec.records) != 1 {
		t.Fatalf("expected one recorded verse, got %d", len(rec.records))
	}
	got := rec.records[0]
	if got.Book != "ruth" || got.Chapter != 1 || got.Verse != 1 || got.Translation != "esv" {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.Stats == nil || got.Stats.Accuracy == nil || got.Stats.CorrectedAccuracy == nil {
		t.Fatalf("expected stats on record, got %+v", got.Stats)
	}
	if *got.Stats.Accuracy >= 100 || *got.Stats.CorrectedAccuracy != 100 {
		t.Fatalf("unexpected accuracy %v / %v", *got.Stats.Accuracy, *got.Stats.CorrectedAccuracy)
	}
	if m.state.ActiveVerse != 2 {
		t.Fatalf("expected verse 2 to be active, got %d", m.state.ActiveVerse)
	}
	footer := m.renderFooter()
	for _, want := range []string{"Ruth 1:2", "Last", "Session 1 verses"} {
		if !strings.Contains(footer, want) {
			t.Fatalf("footer %q missing %q", footer, want)
		}
	}
}

func TestFinishingPassageLoadsNextChapter(t *testing.T) {
	rec := &fakeRecorder{}
	provider := fakeProvider{docs: map[string]string{"ruth/2": ruthTwo}}
	m := newTestModel(t, rec, provider, model.Config{})

	if cmd := typeText(m, "In the"); cmd != nil {
		t.Fatalf("expected no command before the passage ends")
	}
	cmd := typeText(m, "be light")
	if cmd == nil {
		t.Fatalf("expected a load command after the last verse")
	}
	if !m.loading || !m.state.Finished() {
		t.Fatalf("expected finished state while loading")
	}
	if !strings.Contains(m.renderFooter(), "Ruth 1 done") {
		t.Fatalf("unexpected footer %q", m.renderFooter())
	}

	m.Update(cmd())
	if m.loading {
		t.Fatalf("expected loading to end")
	}
	if m.passage.Chapter != 2 || m.state.ActiveVerse != 1 {
		t.Fatalf("expected ruth 2:1, got chapter %d verse %d", m.passage.Chapter, m.state.ActiveVerse)
	}
	if len(rec.records) != 2 {
		t.Fatalf("expected two recorded verses, got %d", len(rec.records))
	}
}

func TestMissingNextChapterShowsNotice(t *testing.T) {
	m := newTestModel(t, &fakeRecorder{}, fakeProvider{}, model.Config{})
	cmd := typeText(m, "In the be light")
	if cmd == nil {
		t.Fatalf("expected a load command")
	}
	m.Update(cmd())
	if !strings.Contains(m.notice, "Ruth 2 is not available") {
		t.Fatalf("unexpected notice %q", m.notice)
	}
	if typeText(m, "x") != nil || len(m.state.Typed) != 0 {
		t.Fatalf("expected keys to be ignored after the passage ends")
	}
}

func TestRecorderFullShowsNotice(t *testing.T) {
	m := newTestModel(t, &fakeRecorder{full: true}, nil, model.Config{})
	typeText(m, "In the")
	if !strings.Contains(m.renderFooter(), "verse not saved") {
		t.Fatalf("expected dropped-record notice, got %q", m.renderFooter())
	}
}

func TestMoveVerse(t *testing.T) {
	m := newTestModel(t, &fakeRecorder{}, nil, model.Config{})
	typeText(m, "In")

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.state.ActiveVerse != 2 || len(m.state.Typed) != 0 {
		t.Fatalf("expected a clean verse 2, got %d with %d atoms", m.state.ActiveVerse, len(m.state.Typed))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.state.ActiveVerse != 2 {
		t.Fatalf("expected to stay on the last verse")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.state.ActiveVerse != 1 {
		t.Fatalf("expected verse 1, got %d", m.state.ActiveVerse)
	}
}

func TestNewModelStartsAtConfiguredVerse(t *testing.T) {
	m := newTestModel(t, &fakeRecorder{}, nil, model.Config{Verse: 2})
	if m.state.ActiveVerse != 2 {
		t.Fatalf("expected verse 2, got %d", m.state.ActiveVerse)
	}

	p, err := passage.Parse("esv", "ruth", 1, []byte(ruthOne))
	if err != nil {
		t.Fatalf("parse passage: %v", err)
	}
	if _, err := NewModel(Options{Config: model.Config{Verse: 9}, Metadata: testMetadata()}, p); err == nil {
		t.Fatalf("expected error for a missing verse")
	}
}

func TestViewRendersPassage(t *testing.T) {
	m := newTestModel(t, &fakeRecorder{}, nil, model.Config{})
	typeText(m, "In")
	out := m.View()
	for _, want := range []string{"1", "In", "the", "2", "be", "light"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view %q missing %q", out, want)
		}
	}

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if out := m.View(); !strings.Contains(out, "Ruth 1:1") {
		t.Fatalf("expected footer in sized view, got %q", out)
	}
}
