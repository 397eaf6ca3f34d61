package passage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const psalmDoc = `headings:
  1: The LORD Is My Shepherd
paragraphs:
  - verses:
      - number: 1
        text: |-
          The LORD is my shepherd;
          I shall not want.
      - number: 2
        text: "He makes me lie down   in green pastures."
  - verses:
      - number: 3
        text: He restores my soul.
`

func TestTokenize(t *testing.T) {
	got := Tokenize("  In the\tbeginning\n  God ")
	want := []Atom{
		NewWord("In"), Space{}, NewWord("the"), Space{}, NewWord("beginning"), NewLine{}, NewWord("God"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected atoms (-want +got):\n%s", diff)
	}
}

func TestTokenizeDivineName(t *testing.T) {
	atoms := Tokenize("the LORD's house, Lord GOD")
	require.Len(t, atoms, 9)
	assert.True(t, atoms[2].(Word).DivineName)
	assert.False(t, atoms[6].(Word).DivineName)
	assert.True(t, atoms[8].(Word).DivineName)
}

func TestParse(t *testing.T) {
	p, err := Parse("esv", "psalms", 23, []byte(psalmDoc))
	require.NoError(t, err)
	require.Len(t, p.Blocks, 2)

	verses := p.Verses()
	require.Len(t, verses, 3)
	assert.Equal(t, 1, verses[0].Ref.Verse)
	assert.Equal(t, "psalms", verses[0].Ref.Book)
	assert.Equal(t, "esv", verses[0].Translation)

	first := verses[0].Atoms
	assert.Equal(t, Decoration{Text: "The LORD Is My Shepherd"}, first[0])
	assert.Equal(t, VerseNumber{Number: 1, Text: "1"}, first[1])

	kinds := make([]AtomKind, 0, len(first))
	for _, a := range first[2:] {
		kinds = append(kinds, a.Kind())
	}
	assert.Contains(t, kinds, KindNewLine)

	second, ok := p.Verse(2)
	require.True(t, ok)
	assert.Equal(t, VerseNumber{Number: 2, Text: "2"}, second.Atoms[0])
	// The run of spaces before "in" collapses into one space atom.
	var secondKinds []AtomKind
	for _, a := range second.Atoms[1:] {
		secondKinds = append(secondKinds, a.Kind())
	}
	wantKinds := []AtomKind{KindWord}
	for i := 0; i < 7; i++ {
		wantKinds = append(wantKinds, KindSpace, KindWord)
	}
	if diff := cmp.Diff(wantKinds, secondKinds); diff != "" {
		t.Fatalf("unexpected verse 2 atom kinds (-want +got):\n%s", diff)
	}
	assert.Equal(t, NewWord("in"), second.Atoms[11])

	_, ok = p.Verse(9)
	assert.False(t, ok)
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := map[string]string{
		"duplicate": "paragraphs:\n  - verses:\n      - {number: 1, text: a}\n      - {number: 1, text: b}\n",
		"zero":      "paragraphs:\n  - verses:\n      - {number: 0, text: a}\n",
		"empty":     "paragraphs: []\n",
		"blank":     "paragraphs:\n  - verses:\n      - {number: 1, text: '   '}\n",
		"yaml":      "paragraphs: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("esv", "genesis", 1, []byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestDirProvider(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "esv", "psalms")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "23.yaml"), []byte(psalmDoc), 0o644))

	provider := NewDirProvider(root)
	p, err := provider.Passage(context.Background(), "esv", "psalms", 23)
	require.NoError(t, err)
	assert.Equal(t, 23, p.Chapter)
	assert.Len(t, p.Verses(), 3)

	_, err = provider.Passage(context.Background(), "esv", "psalms", 24)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = provider.Passage(context.Background(), "esv", "", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = provider.Passage(ctx, "esv", "psalms", 23)
	assert.ErrorIs(t, err, context.Canceled)
}
