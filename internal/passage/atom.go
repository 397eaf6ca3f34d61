// Package passage defines the structure of a Bible passage and loads it from disk.
package passage

import "github.com/verte-zerg/versetype/internal/model"

// AtomKind discriminates the Atom variants.
type AtomKind int

const (
	KindWord AtomKind = iota
	KindSpace
	KindNewLine
	KindVerseNumber
	KindDecoration
)

func (k AtomKind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindSpace:
		return "space"
	case KindNewLine:
		return "newLine"
	case KindVerseNumber:
		return "verseNumber"
	case KindDecoration:
		return "decoration"
	default:
		return "unknown"
	}
}

// Atom is the smallest structural unit of a passage. The set of
// implementations is closed: Word, Space, NewLine, VerseNumber, Decoration.
type Atom interface {
	Kind() AtomKind
	isAtom()
}

// Word is a run of letters. DivineName marks words rendered in small caps.
type Word struct {
	Letters    []rune
	DivineName bool
}

// Space separates words on a line.
type Space struct{}

// NewLine ends a poetic line within a verse.
type NewLine struct{}

// VerseNumber is the display-only verse label.
type VerseNumber struct {
	Number int
	Text   string
}

// Decoration is display-only text such as a section heading.
type Decoration struct {
	Text string
}

func (Word) Kind() AtomKind        { return KindWord }
func (Space) Kind() AtomKind       { return KindSpace }
func (NewLine) Kind() AtomKind     { return KindNewLine }
func (VerseNumber) Kind() AtomKind { return KindVerseNumber }
func (Decoration) Kind() AtomKind  { return KindDecoration }

func (Word) isAtom()        {}
func (Space) isAtom()       {}
func (NewLine) isAtom()     {}
func (VerseNumber) isAtom() {}
func (Decoration) isAtom()  {}

// NewWord builds a Word from a string.
func NewWord(s string) Word {
	return Word{Letters: []rune(s)}
}

// String returns the letters of the word.
func (w Word) String() string {
	return string(w.Letters)
}

// Typeable reports whether users type the atom (word, space or newLine).
func Typeable(a Atom) bool {
	switch a.Kind() {
	case KindWord, KindSpace, KindNewLine:
		return true
	default:
		return false
	}
}

// Block is a node of the passage tree: Paragraph or Verse.
type Block interface {
	isBlock()
}

// Paragraph groups verses.
type Paragraph struct {
	Children []Block
}

// Verse holds the atoms of one verse.
type Verse struct {
	Ref         model.VerseRef
	Translation string
	Atoms       []Atom
}

func (Paragraph) isBlock() {}
func (Verse) isBlock()     {}

// Passage is one chapter of one translation.
type Passage struct {
	Translation string
	Book        string
	Chapter     int
	Blocks      []Block
}

// Verses returns the verses of the passage in document order.
func (p Passage) Verses() []Verse {
	var out []Verse
	var walk func(blocks []Block)
	walk = func(blocks []Block) {
		for _, b := range blocks {
			switch b := b.(type) {
			case Verse:
				out = append(out, b)
			case Paragraph:
				walk(b.Children)
			}
		}
	}
	walk(p.Blocks)
	return out
}

// Verse finds a verse by number.
func (p Passage) Verse(number int) (Verse, bool) {
	for _, v := range p.Verses() {
		if v.Ref.Verse == number {
			return v, true
		}
	}
	return Verse{}, false
}
