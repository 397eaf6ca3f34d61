package bible

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/versetype/internal/model"
)

func TestStandardMetadata(t *testing.T) {
	meta := Standard()
	books := meta.Books()
	require.Len(t, books, 66)

	chapters, verses := 0, 0
	for _, b := range books {
		chapters += b.Chapters()
		verses += b.TotalVerses()
	}
	assert.Equal(t, 1189, chapters)
	assert.Equal(t, 31102, verses)

	gen, ok := meta.Book("genesis")
	require.True(t, ok)
	assert.Equal(t, 50, gen.Chapters())
	assert.Equal(t, 31, gen.VersesIn(1))
	assert.Equal(t, 0, gen.VersesIn(51))

	psalms, ok := meta.Book("psalms")
	require.True(t, ok)
	assert.Equal(t, 176, psalms.VersesIn(119))
}

func TestStandardReturnsCopies(t *testing.T) {
	a := Standard()
	gen, _ := a.Book("genesis")
	gen.Verses[0] = 1

	b := Standard()
	fresh, _ := b.Book("genesis")
	assert.Equal(t, 31, fresh.VersesIn(1))
}

func TestAccessorsDoNotShareState(t *testing.T) {
	meta := New([]Book{
		{Name: "Ruth", Slug: "ruth", Verses: []int{22, 23}},
		{Name: "Jonah", Slug: "jonah", Verses: []int{17}},
	})

	books := meta.Books()
	books[0].Name = "Naomi"
	books[0].Verses[0] = 1
	books[1] = Book{}

	ruth, ok := meta.Book("ruth")
	require.True(t, ok)
	ruth.Verses[1] = 2

	assert.Equal(t, []Book{
		{Name: "Ruth", Slug: "ruth", Order: 1, Verses: []int{22, 23}},
		{Name: "Jonah", Slug: "jonah", Order: 2, Verses: []int{17}},
	}, meta.Books())
	assert.True(t, meta.Contains("ruth", 2, 23))
	_, ok = meta.Book("jonah")
	assert.True(t, ok)
}

func TestContains(t *testing.T) {
	meta := Standard()
	assert.True(t, meta.Contains("john", 3, 16))
	assert.False(t, meta.Contains("john", 3, 37))
	assert.False(t, meta.Contains("john", 22, 1))
	assert.False(t, meta.Contains("nope", 1, 1))
	assert.False(t, meta.Contains("john", 3, 0))
}

func TestNextChapter(t *testing.T) {
	meta := Standard()

	book, chapter, ok := meta.Next("genesis", 1)
	require.True(t, ok)
	assert.Equal(t, "genesis", book)
	assert.Equal(t, 2, chapter)

	book, chapter, ok = meta.Next("genesis", 50)
	require.True(t, ok)
	assert.Equal(t, "exodus", book)
	assert.Equal(t, 1, chapter)

	_, _, ok = meta.Next("revelation", 22)
	assert.False(t, ok)
}

func TestParseReference(t *testing.T) {
	meta := Standard()
	tests := []struct {
		in   string
		want model.VerseRef
	}{
		{"genesis 1", model.VerseRef{Book: "genesis", Chapter: 1}},
		{"gen 3", model.VerseRef{Book: "genesis", Chapter: 3}},
		{"1 john 3", model.VerseRef{Book: "1-john", Chapter: 3}},
		{"1 John", model.VerseRef{Book: "1-john", Chapter: 1}},
		{"psalm 23:4", model.VerseRef{Book: "psalms", Chapter: 23, Verse: 4}},
		{"Song of Solomon 2", model.VerseRef{Book: "song-of-solomon", Chapter: 2}},
		{"jn 3:16", model.VerseRef{Book: "john", Chapter: 3, Verse: 16}},
		{"john", model.VerseRef{Book: "john", Chapter: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := meta.ParseReference(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReferenceErrors(t *testing.T) {
	meta := Standard()

	_, err := meta.ParseReference("hezekiah 1")
	assert.ErrorIs(t, err, ErrUnknownBook)

	_, err = meta.ParseReference("ez 1")
	assert.ErrorIs(t, err, ErrUnknownBook)

	_, err = meta.ParseReference("genesis 51")
	assert.Error(t, err)

	_, err = meta.ParseReference("john 3:40")
	assert.Error(t, err)

	_, err = meta.ParseReference("")
	assert.Error(t, err)
}

func TestWithOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.toml")
	content := `[books.3-john]
chapters = [15]

[books.malachi]
name = "Malachi (Hebrew)"
chapters = [14, 17, 24]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	meta, err := Standard().WithOverrides(path)
	require.NoError(t, err)

	john, _ := meta.Book("3-john")
	assert.Equal(t, 15, john.VersesIn(1))

	mal, _ := meta.Book("malachi")
	assert.Equal(t, "Malachi (Hebrew)", mal.Name)
	assert.Equal(t, 3, mal.Chapters())

	orig, _ := Standard().Book("malachi")
	assert.Equal(t, 4, orig.Chapters())
}

func TestWithOverridesMissingFile(t *testing.T) {
	meta, err := Standard().WithOverrides(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Len(t, meta.Books(), 66)
}

func TestWithOverridesUnknownBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.toml")
	require.NoError(t, os.WriteFile(path, []byte("[books.tobit]\nchapters = [22]\n"), 0o644))

	_, err := Standard().WithOverrides(path)
	assert.ErrorIs(t, err, ErrUnknownBook)
}

func TestNewAssignsOrder(t *testing.T) {
	meta := New([]Book{
		{Name: "First", Slug: "first", Verses: []int{2}},
		{Name: "Second", Slug: "second", Verses: []int{1, 1}},
	})
	second, ok := meta.Book("second")
	require.True(t, ok)
	assert.Equal(t, 2, second.Order)
	assert.Equal(t, 2, second.TotalVerses())
}
