// Package progress reduces typed verse history into per-book and per-chapter
// completion, including prestige (full passes through a book).
package progress

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/versetype/internal/bible"
	"github.com/verte-zerg/versetype/internal/model"
)

// Overview is the progress of one translation.
type Overview struct {
	Translation string
	Books       []BookOverview
	// Skipped counts records that referenced verses outside the metadata.
	Skipped int
}

// BookOverview is the progress through one book.
type BookOverview struct {
	Book                         string
	Name                         string
	TotalVerses                  int
	TypedVersesInCurrentPrestige int
	Prestige                     int
	Percentage                   int
	Chapters                     []ChapterOverview
}

// ChapterOverview is the progress through one chapter.
type ChapterOverview struct {
	Chapter     int
	TotalVerses int
	// TypedVerses counts verses typed at least once.
	TypedVerses                  int
	TypedVersesInCurrentPrestige int
	Percentage                   int
	Verses                       map[int]VerseProgress
}

// VerseProgress describes a verse typed at least once.
type VerseProgress struct {
	Completions            int
	TypedInCurrentPrestige bool
	LastTypedAt            time.Time
	Latest                 model.TypedVerse
}

type verseKey struct {
	book    string
	chapter int
	verse   int
}

type verseAcc struct {
	completions map[int64]struct{}
	latest      model.TypedVerse
}

// Aggregate builds the overview of translation from records. Records of other
// translations are ignored; records outside meta are logged and skipped.
// A nil logger disables logging.
func Aggregate(translation string, records []model.TypedVerse, meta bible.Metadata, logger *zap.Logger) Overview {
	if logger == nil {
		logger = zap.NewNop()
	}
	overview := Overview{Translation: translation}

	accs := map[verseKey]*verseAcc{}
	for _, rec := range records {
		if translation != "" && rec.Translation != translation {
			continue
		}
		if !meta.Contains(rec.Book, rec.Chapter, rec.Verse) {
			logger.Warn("skipping typed verse outside book metadata",
				zap.String("id", rec.ID),
				zap.String("translation", rec.Translation),
				zap.String("book", rec.Book),
				zap.Int("chapter", rec.Chapter),
				zap.Int("verse", rec.Verse))
			overview.Skipped++
			continue
		}
		key := verseKey{book: rec.Book, chapter: rec.Chapter, verse: rec.Verse}
		acc, ok := accs[key]
		if !ok {
			acc = &verseAcc{completions: map[int64]struct{}{}}
			accs[key] = acc
		}
		acc.completions[rec.CreatedAt.UnixNano()] = struct{}{}
		if !ok || rec.CreatedAt.After(acc.latest.CreatedAt) {
			acc.latest = rec
		}
	}

	for _, book := range meta.Books() {
		overview.Books = append(overview.Books, aggregateBook(book, accs))
	}
	return overview
}

func aggregateBook(book bible.Book, accs map[verseKey]*verseAcc) BookOverview {
	out := BookOverview{
		Book:        book.Slug,
		Name:        book.Name,
		TotalVerses: book.TotalVerses(),
	}

	prestige := -1
	for ch := 1; ch <= book.Chapters(); ch++ {
		for v := 1; v <= book.VersesIn(ch); v++ {
			n := 0
			if acc, ok := accs[verseKey{book.Slug, ch, v}]; ok {
				n = len(acc.completions)
			}
			if prestige < 0 || n < prestige {
				prestige = n
			}
		}
	}
	if prestige < 0 {
		prestige = 0
	}
	out.Prestige = prestige

	for ch := 1; ch <= book.Chapters(); ch++ {
		chapter := ChapterOverview{
			Chapter:     ch,
			TotalVerses: book.VersesIn(ch),
			Verses:      map[int]VerseProgress{},
		}
		for v := 1; v <= chapter.TotalVerses; v++ {
			acc, ok := accs[verseKey{book.Slug, ch, v}]
			if !ok {
				continue
			}
			n := len(acc.completions)
			current := n > prestige
			chapter.Verses[v] = VerseProgress{
				Completions:            n,
				TypedInCurrentPrestige: current,
				LastTypedAt:            acc.latest.CreatedAt,
				Latest:                 acc.latest,
			}
			chapter.TypedVerses++
			if current {
				chapter.TypedVersesInCurrentPrestige++
			}
		}
		// Progress is measured within the current pass, like the book's.
		chapter.Percentage = Percentage(chapter.TypedVersesInCurrentPrestige, chapter.TotalVerses)
		out.TypedVersesInCurrentPrestige += chapter.TypedVersesInCurrentPrestige
		out.Chapters = append(out.Chapters, chapter)
	}
	out.Percentage = Percentage(out.TypedVersesInCurrentPrestige, out.TotalVerses)
	return out
}

// Percentage returns round(100*n/total) in [0, 100]. Only n >= total yields
// 100, so a nearly finished pass never rounds up to complete.
func Percentage(n, total int) int {
	if total <= 0 || n <= 0 {
		return 0
	}
	if n >= total {
		return 100
	}
	p := int(math.Round(100 * float64(n) / float64(total)))
	if p >= 100 {
		return 99
	}
	return p
}

// Book finds a book overview by slug.
func (o Overview) Book(slug string) (BookOverview, bool) {
	for _, b := range o.Books {
		if b.Book == slug {
			return b, true
		}
	}
	return BookOverview{}, false
}

// Started returns the books with any typed verse or prestige.
func (o Overview) Started() []BookOverview {
	var out []BookOverview
	for _, b := range o.Books {
		if b.Prestige > 0 || b.TypedVersesInCurrentPrestige > 0 {
			out = append(out, b)
			continue
		}
		for _, ch := range b.Chapters {
			if ch.TypedVerses > 0 {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// Chapter finds a chapter by number.
func (b BookOverview) Chapter(n int) (ChapterOverview, bool) {
	if n < 1 || n > len(b.Chapters) {
		return ChapterOverview{}, false
	}
	return b.Chapters[n-1], true
}
