// Package passage defines the structure of a Bible passage and loads it from disk.
package passage

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/versetype/internal/model"
)

type document struct {
	Headings   map[int]string `yaml:"headings"`
	Paragraphs []struct {
		Verses []struct {
			Number int    `yaml:"number"`
			Text   string `yaml:"text"`
		} `yaml:"verses"`
	} `yaml:"paragraphs"`
}

var divineNames = map[string]struct{}{
	"LORD": {},
	"GOD":  {},
}

// Parse decodes a YAML chapter document into a passage.
func Parse(translation, book string, chapter int, data []byte) (Passage, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Passage{}, fmt.Errorf("failed to decode passage: %w", err)
	}
	p := Passage{Translation: translation, Book: book, Chapter: chapter}
	seen := map[int]struct{}{}
	for pi, para := range doc.Paragraphs {
		var children []Block
		for _, v := range para.Verses {
			if v.Number <= 0 {
				return Passage{}, fmt.Errorf("paragraph %d: invalid verse number %d", pi+1, v.Number)
			}
			if _, dup := seen[v.Number]; dup {
				return Passage{}, fmt.Errorf("paragraph %d: duplicate verse %d", pi+1, v.Number)
			}
			seen[v.Number] = struct{}{}

			var atoms []Atom
			if heading := strings.TrimSpace(doc.Headings[v.Number]); heading != "" {
				atoms = append(atoms, Decoration{Text: heading})
			}
			atoms = append(atoms, VerseNumber{Number: v.Number, Text: strconv.Itoa(v.Number)})
			words := Tokenize(v.Text)
			if len(words) == 0 {
				return Passage{}, fmt.Errorf("verse %d has no text", v.Number)
			}
			atoms = append(atoms, words...)
			children = append(children, Verse{
				Ref:         model.VerseRef{Book: book, Chapter: chapter, Verse: v.Number},
				Translation: translation,
				Atoms:       atoms,
			})
		}
		if len(children) > 0 {
			p.Blocks = append(p.Blocks, Paragraph{Children: children})
		}
	}
	if len(p.Blocks) == 0 {
		return Passage{}, fmt.Errorf("passage %s %d has no verses", book, chapter)
	}
	return p, nil
}

// Tokenize splits text into word, space and newLine atoms. Runs of whitespace
// collapse into one atom; a run containing a line break becomes a NewLine.
// Leading and trailing whitespace is dropped.
func Tokenize(text string) []Atom {
	var atoms []Atom
	var word []rune
	pendingSpace, pendingNewLine := false, false

	flushWord := func() {
		if len(word) == 0 {
			return
		}
		if len(atoms) > 0 {
			if pendingNewLine {
				atoms = append(atoms, NewLine{})
			} else if pendingSpace {
				atoms = append(atoms, Space{})
			}
		}
		pendingSpace, pendingNewLine = false, false
		w := Word{Letters: word}
		w.DivineName = isDivineName(word)
		atoms = append(atoms, w)
		word = nil
	}

	for _, r := range text {
		switch {
		case r == '\n':
			flushWord()
			pendingNewLine = true
		case unicode.IsSpace(r):
			flushWord()
			pendingSpace = true
		default:
			word = append(word, r)
		}
	}
	flushWord()
	return atoms
}

func isDivineName(letters []rune) bool {
	end := 0
	for end < len(letters) && unicode.IsLetter(letters[end]) {
		end++
	}
	_, ok := divineNames[string(letters[:end])]
	return ok
}
