// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s     string
	width int
	// isSpace marks a wrap opportunity; the space is dropped at a line end.
	isSpace bool
	// isBreak ends the line after this rune.
	isBreak bool
}

func newStyledRune(s string, r rune) styledRune {
	return styledRune{s: s, width: runewidth.RuneWidth(r), isSpace: r == ' '}
}

func breakRune(s string, width int) styledRune {
	return styledRune{s: s, width: width, isBreak: true}
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapLines wraps at spaces to fit width and honours hard breaks. It also
// returns the line each input rune landed on.
func wrapLines(runes []styledRune, width int) ([]string, []int) {
	lineOf := make([]int, len(runes))
	lines := []string{}
	flush := func(idx []int) {
		var b strings.Builder
		for _, k := range idx {
			b.WriteString(runes[k].s)
			lineOf[k] = len(lines)
		}
		lines = append(lines, b.String())
	}

	line := make([]int, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1
	reset := func() {
		line = line[:0]
		lineWidth = 0
		lastSpaceIdx = -1
	}

	for i := 0; i < len(runes); {
		item := runes[i]
		if width > 0 && lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				flush(line[:lastSpaceIdx])
				lineOf[line[lastSpaceIdx]] = len(lines) - 1
				rest := append([]int{}, line[lastSpaceIdx+1:]...)
				reset()
				for _, k := range rest {
					line = append(line, k)
					lineWidth += runes[k].width
					if runes[k].isSpace {
						lastSpaceIdx = len(line) - 1
					}
				}
			} else {
				flush(line)
				reset()
			}
			continue
		}
		line = append(line, i)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		if item.isBreak {
			flush(line)
			reset()
		}
		i++
	}
	if len(line) > 0 || len(lines) == 0 {
		flush(line)
	}
	return lines, lineOf
}
