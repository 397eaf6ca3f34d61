// Package bible provides static book metadata and reference parsing.
package bible

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/verte-zerg/versetype/internal/model"
)

// abbreviations that are not prefixes of a unique book name.
var abbreviations = map[string]string{
	"mt":    "matthew",
	"mk":    "mark",
	"lk":    "luke",
	"jn":    "john",
	"jas":   "james",
	"phil":  "philippians",
	"phm":   "philemon",
	"1jn":   "1-john",
	"2jn":   "2-john",
	"3jn":   "3-john",
	"ps":    "psalms",
	"psa":   "psalms",
	"psalm": "psalms",
	"jdg":   "judges",
	"sos":   "song-of-solomon",
}

// ResolveBook finds a book by slug, full name, abbreviation or unique prefix.
func (m Metadata) ResolveBook(name string) (Book, error) {
	key := normalizeName(name)
	if key == "" {
		return Book{}, fmt.Errorf("%w: empty name", ErrUnknownBook)
	}
	if slug, ok := abbreviations[key]; ok {
		if b, ok := m.Book(slug); ok {
			return b, nil
		}
	}
	var matches []Book
	for _, b := range m.books {
		full := normalizeName(b.Name)
		if key == full || key == normalizeName(b.Slug) {
			return b, nil
		}
		if len(key) >= 2 && strings.HasPrefix(full, key) {
			matches = append(matches, b)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		names := make([]string, len(matches))
		for i, b := range matches {
			names[i] = b.Name
		}
		return Book{}, fmt.Errorf("%w: %q is ambiguous (%s)", ErrUnknownBook, name, strings.Join(names, ", "))
	}
	return Book{}, fmt.Errorf("%w: %q", ErrUnknownBook, name)
}

// ParseReference parses "book chapter" or "book chapter:verse".
// The chapter defaults to 1 when omitted.
func (m Metadata) ParseReference(s string) (model.VerseRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.VerseRef{}, fmt.Errorf("reference is empty")
	}
	fields := strings.Fields(s)
	chapter, verse := 1, 0
	last := fields[len(fields)-1]
	nameFields := fields
	if len(fields) > 1 && startsWithDigit(last) {
		var err error
		chapter, verse, err = parseChapterVerse(last)
		if err != nil {
			return model.VerseRef{}, fmt.Errorf("invalid reference %q: %w", s, err)
		}
		nameFields = fields[:len(fields)-1]
	}
	book, err := m.ResolveBook(strings.Join(nameFields, " "))
	if err != nil {
		return model.VerseRef{}, err
	}
	if chapter < 1 || chapter > book.Chapters() {
		return model.VerseRef{}, fmt.Errorf("%s has %d chapters, got %d", book.Name, book.Chapters(), chapter)
	}
	if verse != 0 && (verse < 1 || verse > book.VersesIn(chapter)) {
		return model.VerseRef{}, fmt.Errorf("%s %d has %d verses, got %d", book.Name, chapter, book.VersesIn(chapter), verse)
	}
	return model.VerseRef{Book: book.Slug, Chapter: chapter, Verse: verse}, nil
}

func parseChapterVerse(s string) (int, int, error) {
	chapterPart, versePart, hasVerse := strings.Cut(s, ":")
	chapter, err := strconv.Atoi(chapterPart)
	if err != nil {
		return 0, 0, fmt.Errorf("bad chapter %q", chapterPart)
	}
	if !hasVerse {
		return chapter, 0, nil
	}
	verse, err := strconv.Atoi(versePart)
	if err != nil {
		return 0, 0, fmt.Errorf("bad verse %q", versePart)
	}
	return chapter, verse, nil
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
