// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Config defines practice settings.
type Config struct {
	Translation  string
	Book         string
	Chapter      int
	Verse        int
	PassagesDir  string
	ActiveWindow time.Duration
	Resume       bool
}

// HistoryConfig defines filters and options for history output.
type HistoryConfig struct {
	Translation string
	Since       *time.Time
	Book        string
	CurveWindow int
}

// VerseRef identifies a verse within a translation-independent versification.
type VerseRef struct {
	Book    string
	Chapter int
	Verse   int
}

// String renders the reference as "book chapter:verse".
func (r VerseRef) String() string {
	if r.Verse == 0 {
		return fmt.Sprintf("%s %d", r.Book, r.Chapter)
	}
	return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.Verse)
}

// Keystroke is one raw key press recorded while typing a verse.
type Keystroke struct {
	Key  string    `json:"key"`
	Time time.Time `json:"time"`
}

// VerseStats holds timing-derived statistics for a typed verse.
// Nil fields mean the value could not be derived.
type VerseStats struct {
	WPM               *float64
	Accuracy          *float64
	CorrectedAccuracy *float64
}

// TypedVerse is a completed verse.
type TypedVerse struct {
	ID          string
	Translation string
	Book        string
	Chapter     int
	Verse       int
	CreatedAt   time.Time
	Keystrokes  []Keystroke
	Stats       *VerseStats
}

// Ref returns the verse reference of the record.
func (tv TypedVerse) Ref() VerseRef {
	return VerseRef{Book: tv.Book, Chapter: tv.Chapter, Verse: tv.Verse}
}
