// Package bible provides static book metadata and reference parsing.
package bible

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrUnknownBook is returned when a book slug or name cannot be resolved.
var ErrUnknownBook = errors.New("unknown book")

// Book holds metadata for a single book.
type Book struct {
	Name   string
	Slug   string
	Order  int
	Verses []int // verses per chapter, index 0 is chapter 1
}

// Chapters returns the number of chapters in the book.
func (b Book) Chapters() int {
	return len(b.Verses)
}

// VersesIn returns the verse count of a chapter, or 0 when out of range.
func (b Book) VersesIn(chapter int) int {
	if chapter < 1 || chapter > len(b.Verses) {
		return 0
	}
	return b.Verses[chapter-1]
}

// TotalVerses returns the number of verses across all chapters.
func (b Book) TotalVerses() int {
	total := 0
	for _, n := range b.Verses {
		total += n
	}
	return total
}

// Metadata is the versification of one translation.
type Metadata struct {
	books  []Book
	bySlug map[string]int
}

// Standard returns metadata for the 66-book canon in English versification.
func Standard() Metadata {
	books := make([]Book, len(standardBooks))
	for i, b := range standardBooks {
		b.Verses = append([]int(nil), b.Verses...)
		books[i] = b
	}
	return newMetadata(books)
}

// New builds metadata from an explicit book list. Order follows the slice.
func New(books []Book) Metadata {
	out := make([]Book, len(books))
	for i, b := range books {
		b.Order = i + 1
		b.Verses = append([]int(nil), b.Verses...)
		out[i] = b
	}
	return newMetadata(out)
}

func newMetadata(books []Book) Metadata {
	bySlug := make(map[string]int, len(books))
	for i, b := range books {
		bySlug[b.Slug] = i
	}
	return Metadata{books: books, bySlug: bySlug}
}

// Books returns a copy of all books in canonical order.
func (m Metadata) Books() []Book {
	out := make([]Book, len(m.books))
	for i, b := range m.books {
		out[i] = b.clone()
	}
	return out
}

// Book looks up a book by slug. The result does not share state with m.
func (m Metadata) Book(slug string) (Book, bool) {
	idx, ok := m.bySlug[slug]
	if !ok {
		return Book{}, false
	}
	return m.books[idx].clone(), true
}

func (b Book) clone() Book {
	b.Verses = append([]int(nil), b.Verses...)
	return b
}

// Contains reports whether book, chapter and verse are all in range.
func (m Metadata) Contains(slug string, chapter, verse int) bool {
	idx, ok := m.bySlug[slug]
	if !ok {
		return false
	}
	n := m.books[idx].VersesIn(chapter)
	return verse >= 1 && verse <= n
}

// Next returns the chapter following book/chapter, crossing into the next book.
// ok is false after the last chapter of the last book.
func (m Metadata) Next(slug string, chapter int) (string, int, bool) {
	idx, ok := m.bySlug[slug]
	if !ok {
		return "", 0, false
	}
	if chapter < m.books[idx].Chapters() {
		return slug, chapter + 1, true
	}
	if idx+1 >= len(m.books) {
		return "", 0, false
	}
	return m.books[idx+1].Slug, 1, true
}

// overrideFile is the TOML layout for translation-specific versification.
type overrideFile struct {
	Books map[string]struct {
		Name     *string `toml:"name"`
		Chapters []int   `toml:"chapters"`
	} `toml:"books"`
}

// WithOverrides reads a TOML override file and returns a copy of m with the
// listed books replaced. Missing file is not an error.
func (m Metadata) WithOverrides(path string) (Metadata, error) {
	if path == "" {
		return m, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return Metadata{}, fmt.Errorf("failed to stat metadata overrides: %w", err)
	}
	var file overrideFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return Metadata{}, fmt.Errorf("failed to decode metadata overrides: %w", err)
	}
	books := make([]Book, len(m.books))
	copy(books, m.books)
	for slug, entry := range file.Books {
		idx, ok := m.bySlug[slug]
		if !ok {
			return Metadata{}, fmt.Errorf("%w: %q in %s", ErrUnknownBook, slug, path)
		}
		if len(entry.Chapters) == 0 {
			return Metadata{}, fmt.Errorf("book %q has no chapters in %s", slug, path)
		}
		for i, n := range entry.Chapters {
			if n <= 0 {
				return Metadata{}, fmt.Errorf("book %q chapter %d has %d verses", slug, i+1, n)
			}
		}
		b := books[idx]
		b.Verses = append([]int(nil), entry.Chapters...)
		if entry.Name != nil {
			b.Name = *entry.Name
		}
		books[idx] = b
	}
	return newMetadata(books), nil
}
