// Package matcher turns keystrokes into a typed position for the active verse.
package matcher

import (
	"github.com/verte-zerg/versetype/internal/model"
	"github.com/verte-zerg/versetype/internal/passage"
)

// step applies one key to a typed position. It never mutates typed; ok is
// false when the key is invalid in context.
func step(typed, ref []passage.Atom, key Key) ([]passage.Atom, bool) {
	switch key {
	case KeyBackspace:
		return backspace(typed)
	case KeyEnter:
		return separator(typed, ref, passage.NewLine{})
	case KeySpace:
		return separator(typed, ref, passage.Space{})
	default:
		return letter(typed, ref, key.Rune())
	}
}

func backspace(typed []passage.Atom) ([]passage.Atom, bool) {
	if len(typed) == 0 {
		return typed, false
	}
	last := len(typed) - 1
	if w, ok := typed[last].(passage.Word); ok && len(w.Letters) > 1 {
		out := cloneAtoms(typed)
		out[last] = passage.Word{Letters: cloneRunes(w.Letters[:len(w.Letters)-1])}
		return out, true
	}
	return cloneAtoms(typed[:last]), true
}

func separator(typed, ref []passage.Atom, sep passage.Atom) ([]passage.Atom, bool) {
	if len(typed) == 0 || len(typed) >= len(ref) {
		return typed, false
	}
	if typed[len(typed)-1].Kind() != passage.KindWord {
		return typed, false
	}
	if ref[len(typed)].Kind() != sep.Kind() {
		return typed, false
	}
	return append(cloneAtoms(typed), sep), true
}

func letter(typed, ref []passage.Atom, r rune) ([]passage.Atom, bool) {
	if len(typed) > 0 {
		if w, ok := typed[len(typed)-1].(passage.Word); ok {
			out := cloneAtoms(typed)
			out[len(out)-1] = passage.Word{Letters: append(cloneRunes(w.Letters), r)}
			return out, true
		}
	}
	if len(typed) >= len(ref) || ref[len(typed)].Kind() != passage.KindWord {
		return typed, false
	}
	return append(cloneAtoms(typed), passage.Word{Letters: []rune{r}}), true
}

// Replay rebuilds a typed position from an empty start. Keys that are invalid
// at their point in the log are skipped, so replaying is deterministic.
func Replay(ref []passage.Atom, log []model.Keystroke) []passage.Atom {
	var typed []passage.Atom
	for _, ks := range log {
		key, ok := ParseKey(ks.Key)
		if !ok {
			continue
		}
		if next, ok := step(typed, ref, key); ok {
			typed = next
		}
	}
	return typed
}

// TraceEntry describes one applied non-backspace keystroke.
type TraceEntry struct {
	Keystroke model.Keystroke
	// Correct is true when the key matched the reference at the moment it was typed.
	Correct bool
	// Survived is false when a later backspace removed the key.
	Survived bool
}

// Trace replays log and reports, for each applied character or line break,
// whether it was correct when typed and whether it is still part of the
// final typed position.
func Trace(ref []passage.Atom, log []model.Keystroke) []TraceEntry {
	var typed []passage.Atom
	var entries []TraceEntry
	var live []int
	for _, ks := range log {
		key, ok := ParseKey(ks.Key)
		if !ok {
			continue
		}
		next, ok := step(typed, ref, key)
		if !ok {
			continue
		}
		typed = next
		if key == KeyBackspace {
			entries[live[len(live)-1]].Survived = false
			live = live[:len(live)-1]
			continue
		}
		entries = append(entries, TraceEntry{
			Keystroke: ks,
			Correct:   lastAtomCorrect(typed, ref),
			Survived:  true,
		})
		live = append(live, len(entries)-1)
	}
	return entries
}

// lastAtomCorrect reports whether the most recently typed letter or
// separator matches the reference.
func lastAtomCorrect(typed, ref []passage.Atom) bool {
	idx := len(typed) - 1
	w, ok := typed[idx].(passage.Word)
	if !ok {
		// Separators are only accepted where the reference has them.
		return true
	}
	refWord, ok := ref[idx].(passage.Word)
	if !ok {
		return false
	}
	li := len(w.Letters) - 1
	return li < len(refWord.Letters) && refWord.Letters[li] == w.Letters[li]
}

func cloneAtoms(atoms []passage.Atom) []passage.Atom {
	out := make([]passage.Atom, len(atoms), len(atoms)+1)
	copy(out, atoms)
	return out
}

func cloneRunes(r []rune) []rune {
	out := make([]rune, len(r), len(r)+1)
	copy(out, r)
	return out
}
