package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/versetype/internal/matcher"
	"github.com/verte-zerg/versetype/internal/passage"
)

const newLineMark = '↵'

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	extraStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8071A"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	doneStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	verseNumberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Faint(true)
	headingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type versePhase int

const (
	phasePending versePhase = iota
	phaseActive
	phaseDone
)

// passageLayout is a styled passage plus the rune where the active verse
// starts, used to scroll it into view.
type passageLayout struct {
	runes       []styledRune
	activeStart int
}

func layoutPassage(p passage.Passage, state matcher.State, showCursor bool) passageLayout {
	verses := p.Verses()
	starts := paragraphStarts(p)
	activeIdx := len(verses)
	if !state.Finished() {
		for i, v := range verses {
			if v.Ref.Verse == state.ActiveVerse {
				activeIdx = i
				break
			}
		}
	}

	var out passageLayout
	for i, v := range verses {
		if i > 0 && starts[v.Ref.Verse] {
			out.runes = append(out.runes, breakRune("", 0), breakRune("", 0))
		}
		phase := phasePending
		switch {
		case i < activeIdx:
			phase = phaseDone
		case i == activeIdx:
			phase = phaseActive
			out.activeStart = len(out.runes)
		}
		ref, err := matcher.ReferenceAtoms(p, v.Ref.Verse)
		if err != nil {
			continue
		}
		out.runes = appendVerseLabel(out.runes, v)
		if phase == phaseActive {
			out.runes = appendActive(out.runes, ref, state.Typed, showCursor)
		} else {
			out.runes = appendPlain(out.runes, ref, phase)
		}
		if i+1 < len(verses) && !starts[verses[i+1].Ref.Verse] {
			out.runes = append(out.runes, newStyledRune(" ", ' '))
		}
	}
	return out
}

// paragraphStarts returns the verse numbers that open a paragraph.
func paragraphStarts(p passage.Passage) map[int]bool {
	starts := map[int]bool{}
	for _, b := range p.Blocks {
		sub := passage.Passage{Blocks: []passage.Block{b}}
		if vs := sub.Verses(); len(vs) > 0 {
			starts[vs[0].Ref.Verse] = true
		}
	}
	return starts
}

func appendVerseLabel(out []styledRune, v passage.Verse) []styledRune {
	for _, a := range v.Atoms {
		switch a := a.(type) {
		case passage.Decoration:
			out = appendText(out, headingStyle, a.Text)
			out = append(out, breakRune("", 0))
		case passage.VerseNumber:
			out = appendText(out, verseNumberStyle, a.Text)
			out = append(out, newStyledRune(" ", ' '))
		}
	}
	return out
}

func appendText(out []styledRune, style lipgloss.Style, text string) []styledRune {
	for _, r := range text {
		out = append(out, newStyledRune(style.Render(string(r)), r))
	}
	return out
}

func appendPlain(out []styledRune, ref []passage.Atom, phase versePhase) []styledRune {
	style := pendingStyle
	if phase == phaseDone {
		style = doneStyle
	}
	for _, a := range ref {
		switch a := a.(type) {
		case passage.Word:
			out = appendText(out, wordStyle(style, a), string(a.Letters))
		case passage.Space:
			out = append(out, newStyledRune(" ", ' '))
		case passage.NewLine:
			out = append(out, breakRune("", 0))
		}
	}
	return out
}

func appendActive(out []styledRune, ref, typed []passage.Atom, showCursor bool) []styledRune {
	results := matcher.Compare(typed, ref)
	cursorAtom, cursorLetter := cursorPosition(typed, results)
	for i, a := range ref {
		atCursor := showCursor && i == cursorAtom
		switch a := a.(type) {
		case passage.Word:
			res := results[i]
			closed := i+1 < len(typed)
			for j, st := range res.Letters {
				var r rune
				if j < len(a.Letters) {
					r = a.Letters[j]
				} else {
					r = res.Extra[j-len(a.Letters)]
				}
				style := letterStyle(st, closed, i == cursorAtom)
				if st != matcher.LetterExtra {
					style = wordStyle(style, a)
				}
				if atCursor && j == cursorLetter {
					style = style.Underline(true)
				}
				out = append(out, newStyledRune(style.Render(string(r)), r))
			}
		case passage.Space:
			style := pendingStyle
			if results[i].Typed {
				style = correctStyle
			}
			if atCursor {
				style = style.Underline(true)
			}
			out = append(out, newStyledRune(style.Render(" "), ' '))
		case passage.NewLine:
			style := pendingStyle
			if results[i].Typed {
				style = correctStyle
			}
			if atCursor {
				style = style.Underline(true)
			}
			out = append(out, breakRune(style.Render(string(newLineMark)), 1))
		}
	}
	return out
}

func letterStyle(st matcher.LetterState, closed, current bool) lipgloss.Style {
	switch st {
	case matcher.LetterCorrect:
		return correctStyle
	case matcher.LetterIncorrect:
		return incorrectStyle
	case matcher.LetterExtra:
		return extraStyle
	}
	switch {
	case closed:
		// Skipped by closing the word early.
		return incorrectStyle
	case current:
		return currentWordStyle
	default:
		return pendingStyle
	}
}

func wordStyle(style lipgloss.Style, w passage.Word) lipgloss.Style {
	if w.DivineName {
		return style.Bold(true)
	}
	return style
}

// cursorPosition maps the typed position to the reference atom and letter
// the next key lands on. A fully typed word moves the cursor to the
// following separator.
func cursorPosition(typed []passage.Atom, results []matcher.AtomResult) (int, int) {
	atom, letter := matcher.Cursor(typed)
	if atom < len(typed) && atom < len(results) && letter >= len(results[atom].Letters) {
		return atom + 1, 0
	}
	return atom, letter
}
