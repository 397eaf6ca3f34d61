// Package matcher turns keystrokes into a typed position for the active verse.
//
// The matcher is a pure reducer: Apply takes a State and one keystroke and
// returns the next State. It holds no timers and no global state; callers
// keep the State and evaluate IsActive from their own render loop.
package matcher

import (
	"errors"
	"time"

	"github.com/verte-zerg/versetype/internal/model"
	"github.com/verte-zerg/versetype/internal/passage"
)

// DefaultActiveWindow is how long the cursor stays active after a keystroke.
const DefaultActiveWindow = 3 * time.Second

var (
	// ErrVerseNotFound is returned when the active verse has no atoms in the passage.
	ErrVerseNotFound = errors.New("verse not found")
	// ErrPassageFinished is returned for keys after the last verse completed.
	ErrPassageFinished = errors.New("passage finished")
)

// Status is the matcher state for the active verse.
type Status int

const (
	StatusIdle Status = iota
	StatusTyping
)

func (s Status) String() string {
	if s == StatusTyping {
		return "typing"
	}
	return "idle"
}

// State is the typing state of one passage session.
type State struct {
	// ActiveVerse is the verse number being typed.
	ActiveVerse  int
	Typed        []passage.Atom
	Log          []model.Keystroke
	LastActivity time.Time
	finished     bool
}

// Completion is emitted when the active verse is completed.
type Completion struct {
	Record    model.TypedVerse
	Reference []passage.Atom
	Typed     []passage.Atom
}

// NewState starts a session at the first verse of the passage.
func NewState(p passage.Passage) (State, error) {
	verses := p.Verses()
	if len(verses) == 0 {
		return State{}, ErrVerseNotFound
	}
	return State{ActiveVerse: verses[0].Ref.Verse}, nil
}

// Finished reports whether every verse of the passage has been completed.
func (s State) Finished() bool {
	return s.finished
}

// Status reports whether the active verse has any keystrokes.
func (s State) Status() Status {
	if len(s.Log) == 0 {
		return StatusIdle
	}
	return StatusTyping
}

// SelectVerse switches to another verse, discarding the current typed
// position and keystroke log.
func SelectVerse(s State, p passage.Passage, verse int) (State, error) {
	if _, err := ReferenceAtoms(p, verse); err != nil {
		return s, err
	}
	return State{ActiveVerse: verse, LastActivity: s.LastActivity}, nil
}

// Apply processes one keystroke. Keys that are not recognised or not valid
// at the current position leave the state unchanged and return no error.
func Apply(s State, p passage.Passage, ks model.Keystroke) (State, *Completion, error) {
	if s.finished {
		return s, nil, ErrPassageFinished
	}
	ref, err := ReferenceAtoms(p, s.ActiveVerse)
	if err != nil {
		return s, nil, err
	}
	key, ok := ParseKey(ks.Key)
	if !ok {
		return s, nil, nil
	}
	typed, ok := step(s.Typed, ref, key)
	if !ok {
		return s, nil, nil
	}
	log := make([]model.Keystroke, len(s.Log), len(s.Log)+1)
	copy(log, s.Log)
	log = append(log, ks)

	next := State{
		ActiveVerse:  s.ActiveVerse,
		Typed:        typed,
		Log:          log,
		LastActivity: ks.Time,
	}
	if !ShapeMatches(typed, ref) {
		return next, nil, nil
	}

	completion := &Completion{
		Record: model.TypedVerse{
			Translation: p.Translation,
			Book:        p.Book,
			Chapter:     p.Chapter,
			Verse:       s.ActiveVerse,
			CreatedAt:   ks.Time,
			Keystrokes:  log,
		},
		Reference: ref,
		Typed:     typed,
	}
	advanced := State{LastActivity: ks.Time}
	if nextVerse, ok := verseAfter(p, s.ActiveVerse); ok {
		advanced.ActiveVerse = nextVerse
	} else {
		advanced.finished = true
	}
	return advanced, completion, nil
}

// ApplyAll folds a sequence of keystrokes, collecting completions. It stops
// at the first error.
func ApplyAll(s State, p passage.Passage, log []model.Keystroke) (State, []Completion, error) {
	var completions []Completion
	for _, ks := range log {
		next, c, err := Apply(s, p, ks)
		if err != nil {
			return s, completions, err
		}
		if c != nil {
			completions = append(completions, *c)
		}
		s = next
	}
	return s, completions, nil
}

// IsActive reports whether the last keystroke happened within window of now.
func IsActive(now, lastActivity time.Time, window time.Duration) bool {
	if lastActivity.IsZero() || window <= 0 {
		return false
	}
	elapsed := now.Sub(lastActivity)
	return elapsed >= 0 && elapsed < window
}

func verseAfter(p passage.Passage, verse int) (int, bool) {
	verses := p.Verses()
	for i, v := range verses {
		if v.Ref.Verse == verse && i+1 < len(verses) {
			return verses[i+1].Ref.Verse, true
		}
	}
	return 0, false
}
