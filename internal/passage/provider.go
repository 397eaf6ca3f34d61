// Package passage defines the structure of a Bible passage and loads it from disk.
package passage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ErrNotFound is returned when a passage does not exist for a reference.
var ErrNotFound = errors.New("passage not found")

// Provider returns the passage for a book chapter in a translation.
type Provider interface {
	Passage(ctx context.Context, translation, book string, chapter int) (Passage, error)
}

// DirProvider reads passages from <Root>/<translation>/<book>/<chapter>.yaml.
type DirProvider struct {
	Root string
}

// NewDirProvider returns a provider rooted at dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{Root: dir}
}

// Path returns the file path of a passage.
func (d *DirProvider) Path(translation, book string, chapter int) string {
	return filepath.Join(d.Root, translation, book, strconv.Itoa(chapter)+".yaml")
}

// Passage implements Provider.
func (d *DirProvider) Passage(ctx context.Context, translation, book string, chapter int) (Passage, error) {
	if err := ctx.Err(); err != nil {
		return Passage{}, err
	}
	if translation == "" || book == "" || chapter <= 0 {
		return Passage{}, fmt.Errorf("%w: %s %s %d", ErrNotFound, translation, book, chapter)
	}
	path := d.Path(translation, book, chapter)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Passage{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Passage{}, fmt.Errorf("failed to read passage: %w", err)
	}
	p, err := Parse(translation, book, chapter, data)
	if err != nil {
		return Passage{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
