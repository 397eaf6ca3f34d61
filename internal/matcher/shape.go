// Package matcher turns keystrokes into a typed position for the active verse.
package matcher

import (
	"fmt"

	"github.com/verte-zerg/versetype/internal/passage"
)

// ReferenceAtoms returns the typeable atoms of a verse: words, spaces and
// line breaks, without leading or trailing whitespace.
func ReferenceAtoms(p passage.Passage, verse int) ([]passage.Atom, error) {
	v, ok := p.Verse(verse)
	if !ok {
		return nil, fmt.Errorf("%w: %s %d:%d", ErrVerseNotFound, p.Book, p.Chapter, verse)
	}
	var atoms []passage.Atom
	for _, a := range v.Atoms {
		if passage.Typeable(a) {
			atoms = append(atoms, a)
		}
	}
	for len(atoms) > 0 && atoms[0].Kind() != passage.KindWord {
		atoms = atoms[1:]
	}
	for len(atoms) > 0 && atoms[len(atoms)-1].Kind() != passage.KindWord {
		atoms = atoms[:len(atoms)-1]
	}
	if len(atoms) == 0 {
		return nil, fmt.Errorf("%w: %s %d:%d has no text", ErrVerseNotFound, p.Book, p.Chapter, verse)
	}
	return atoms, nil
}

// ShapeMatches reports whether typed has the same atom-type sequence as ref.
// Letter content is ignored, except that the final word must be at least as
// long as the reference so a verse does not complete on its last word's
// first letter.
func ShapeMatches(typed, ref []passage.Atom) bool {
	if len(typed) != len(ref) || len(ref) == 0 {
		return false
	}
	for i := range ref {
		if typed[i].Kind() != ref[i].Kind() {
			return false
		}
	}
	last := len(ref) - 1
	refWord, ok := ref[last].(passage.Word)
	if !ok {
		return true
	}
	typedWord := typed[last].(passage.Word)
	return len(typedWord.Letters) >= len(refWord.Letters)
}

// IsShapePrefix reports whether the atom-type sequence of typed is a prefix
// of ref's.
func IsShapePrefix(typed, ref []passage.Atom) bool {
	if len(typed) > len(ref) {
		return false
	}
	for i := range typed {
		if typed[i].Kind() != ref[i].Kind() {
			return false
		}
	}
	return true
}

// LetterState is the correctness of one letter position.
type LetterState int

const (
	LetterPending LetterState = iota
	LetterCorrect
	LetterIncorrect
	LetterExtra
)

// AtomResult is the comparison of one reference atom with the typed position.
type AtomResult struct {
	Kind  passage.AtomKind
	Typed bool
	// Letters holds one state per reference letter followed by one
	// LetterExtra per typed letter beyond the reference word.
	Letters []LetterState
	// Extra holds the typed letters beyond the reference word.
	Extra    []rune
	HasError bool
}

// Compare lines up typed against ref atom by atom. Errors are cosmetic:
// they never block typing or completion.
func Compare(typed, ref []passage.Atom) []AtomResult {
	results := make([]AtomResult, len(ref))
	for i, refAtom := range ref {
		res := AtomResult{Kind: refAtom.Kind(), Typed: i < len(typed)}
		refWord, isWord := refAtom.(passage.Word)
		if !isWord {
			results[i] = res
			continue
		}
		var typedLetters []rune
		if res.Typed {
			if w, ok := typed[i].(passage.Word); ok {
				typedLetters = w.Letters
			}
		}
		res.Letters = make([]LetterState, len(refWord.Letters))
		for j, want := range refWord.Letters {
			switch {
			case j >= len(typedLetters):
				res.Letters[j] = LetterPending
			case typedLetters[j] == want:
				res.Letters[j] = LetterCorrect
			default:
				res.Letters[j] = LetterIncorrect
				res.HasError = true
			}
		}
		if len(typedLetters) > len(refWord.Letters) {
			res.Extra = append([]rune(nil), typedLetters[len(refWord.Letters):]...)
			for range res.Extra {
				res.Letters = append(res.Letters, LetterExtra)
			}
			res.HasError = true
		}
		// A word closed by a separator before all its letters were typed.
		if i+1 < len(typed) && len(typedLetters) < len(refWord.Letters) {
			res.HasError = true
		}
		results[i] = res
	}
	return results
}

// Cursor returns the reference atom index and letter offset where the next
// key lands.
func Cursor(typed []passage.Atom) (atom, letter int) {
	if len(typed) == 0 {
		return 0, 0
	}
	last := len(typed) - 1
	if w, ok := typed[last].(passage.Word); ok {
		return last, len(w.Letters)
	}
	return len(typed), 0
}

// CorrectWords counts typed words identical to their reference word.
func CorrectWords(typed, ref []passage.Atom) int {
	n := 0
	for i := 0; i < len(typed) && i < len(ref); i++ {
		tw, ok := typed[i].(passage.Word)
		if !ok {
			continue
		}
		rw, ok := ref[i].(passage.Word)
		if !ok {
			continue
		}
		if string(tw.Letters) == string(rw.Letters) {
			n++
		}
	}
	return n
}
