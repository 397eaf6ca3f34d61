// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/versetype/internal/bible"
	"github.com/verte-zerg/versetype/internal/matcher"
	"github.com/verte-zerg/versetype/internal/model"
	"github.com/verte-zerg/versetype/internal/passage"
	statsPkg "github.com/verte-zerg/versetype/internal/stats"
)

const (
	blinkInterval = 530 * time.Millisecond
	loadTimeout   = 5 * time.Second
)

// Recorder receives completed verses. It must not block.
type Recorder interface {
	Record(tv model.TypedVerse) bool
}

// Options wires the typing UI to its collaborators.
type Options struct {
	Config   model.Config
	Provider passage.Provider
	Metadata bible.Metadata
	Recorder Recorder
	Logger   *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type tickMsg time.Time

type passageMsg struct {
	book    string
	chapter int
	passage passage.Passage
	err     error
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config   model.Config
	provider passage.Provider
	meta     bible.Metadata
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time

	width  int
	height int

	passage passage.Passage
	state   matcher.State
	blinkOn bool
	loading bool

	last      *model.VerseStats
	hasLast   bool
	completed []model.TypedVerse
	notice    string
}

// NewModel constructs a typing TUI model for an already loaded passage.
func NewModel(opts Options, p passage.Passage) (*Model, error) {
	m := &Model{
		config:   opts.Config,
		provider: opts.Provider,
		meta:     opts.Metadata,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.config.ActiveWindow <= 0 {
		m.config.ActiveWindow = matcher.DefaultActiveWindow
	}
	if err := m.setPassage(p); err != nil {
		return nil, err
	}
	if m.config.Verse > 0 {
		state, err := matcher.SelectVerse(m.state, m.passage, m.config.Verse)
		if err != nil {
			return nil, fmt.Errorf("failed to select verse %d: %w", m.config.Verse, err)
		}
		m.state = state
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return blink()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.blinkOn = !m.blinkOn
		return m, blink()
	case passageMsg:
		m.handlePassage(msg)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m.moveVerse(-1)
			return m, nil
		case tea.KeyDown:
			m.moveVerse(1)
			return m, nil
		case tea.KeyBackspace, tea.KeyDelete:
			return m, m.handleKey(string(matcher.KeyBackspace))
		case tea.KeyEnter:
			return m, m.handleKey(string(matcher.KeyEnter))
		case tea.KeySpace:
			return m, m.handleKey(string(matcher.KeySpace))
		case tea.KeyRunes:
			// At most one key finishes the passage; later keys wait for loading.
			var cmd tea.Cmd
			for _, r := range msg.Runes {
				if c := m.handleKey(string(r)); c != nil {
					cmd = c
				}
			}
			return m, cmd
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	active := matcher.IsActive(m.now(), m.state.LastActivity, m.config.ActiveWindow)
	layout := layoutPassage(m.passage, m.state, active || m.blinkOn)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(layout.runes)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	lines, lineOf := wrapLines(layout.runes, contentWidth)
	bodyHeight := m.height
	footer := m.renderFooter()
	if m.height >= 3 {
		bodyHeight = m.height - 1
	}
	activeLine := len(lines) - 1
	if layout.activeStart < len(lineOf) {
		activeLine = lineOf[layout.activeStart]
	}
	lines = visibleLines(lines, activeLine, bodyHeight)

	content := lipgloss.NewStyle().Width(contentWidth).Render(strings.Join(lines, "\n"))
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

// visibleLines keeps the active line in the upper third of the window.
func visibleLines(lines []string, activeLine, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := activeLine - height/3
	start = max(0, min(start, len(lines)-height))
	return lines[start : start+height]
}

func (m *Model) handleKey(raw string) tea.Cmd {
	if m.loading {
		return nil
	}
	next, completion, err := matcher.Apply(m.state, m.passage, model.Keystroke{Key: raw, Time: m.now()})
	if errors.Is(err, matcher.ErrPassageFinished) {
		return nil
	}
	if err != nil {
		m.logger.Error("failed to apply keystroke",
			zap.String("book", m.passage.Book),
			zap.Int("chapter", m.passage.Chapter),
			zap.Int("verse", m.state.ActiveVerse),
			zap.Error(err))
		m.notice = err.Error()
		return nil
	}
	m.state = next
	if completion == nil {
		return nil
	}
	m.completeVerse(*completion)
	if m.state.Finished() {
		return m.loadNextChapter()
	}
	return nil
}

func (m *Model) completeVerse(c matcher.Completion) {
	rec := c.Record
	rec.Stats = statsPkg.ForVerse(c.Reference, rec.Keystrokes)
	m.last = rec.Stats
	m.hasLast = true
	m.completed = append(m.completed, rec)
	m.notice = ""
	if m.recorder != nil && !m.recorder.Record(rec) {
		m.notice = "history is busy; verse not saved"
	}
}

func (m *Model) loadNextChapter() tea.Cmd {
	book, chapter, ok := m.meta.Next(m.passage.Book, m.passage.Chapter)
	if !ok {
		m.notice = "End of the Bible. Press Esc to quit."
		return nil
	}
	if m.provider == nil {
		return nil
	}
	m.loading = true
	provider := m.provider
	translation := m.passage.Translation
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		p, err := provider.Passage(ctx, translation, book, chapter)
		return passageMsg{book: book, chapter: chapter, passage: p, err: err}
	}
}

func (m *Model) handlePassage(msg passageMsg) {
	m.loading = false
	if msg.err != nil {
		m.logger.Warn("failed to load next chapter",
			zap.String("book", msg.book),
			zap.Int("chapter", msg.chapter),
			zap.Error(msg.err))
		if errors.Is(msg.err, passage.ErrNotFound) {
			m.notice = fmt.Sprintf("%s is not available. Press Esc to quit.", m.refName(msg.book, msg.chapter, 0))
		} else {
			m.notice = "Failed to load the next chapter."
		}
		return
	}
	if err := m.setPassage(msg.passage); err != nil {
		m.logger.Warn("next chapter has no verses", zap.String("book", msg.book), zap.Int("chapter", msg.chapter))
		m.notice = fmt.Sprintf("%s has no verses.", m.refName(msg.book, msg.chapter, 0))
	}
}

func (m *Model) setPassage(p passage.Passage) error {
	state, err := matcher.NewState(p)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", m.refName(p.Book, p.Chapter, 0), err)
	}
	state.LastActivity = m.state.LastActivity
	m.passage = p
	m.state = state
	return nil
}

func (m *Model) moveVerse(delta int) {
	if m.state.Finished() {
		return
	}
	verses := m.passage.Verses()
	for i, v := range verses {
		if v.Ref.Verse != m.state.ActiveVerse {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(verses) {
			return
		}
		state, err := matcher.SelectVerse(m.state, m.passage, verses[j].Ref.Verse)
		if err != nil {
			m.notice = err.Error()
			return
		}
		m.state = state
		return
	}
}

func (m *Model) refName(book string, chapter, verse int) string {
	name := book
	if b, ok := m.meta.Book(book); ok {
		name = b.Name
	}
	if verse > 0 {
		return fmt.Sprintf("%s %d:%d", name, chapter, verse)
	}
	return fmt.Sprintf("%s %d", name, chapter)
}

func (m *Model) renderFooter() string {
	var segments []string
	if m.state.Finished() {
		segments = append(segments, m.refName(m.passage.Book, m.passage.Chapter, 0)+" done")
	} else {
		segments = append(segments, m.refName(m.passage.Book, m.passage.Chapter, m.state.ActiveVerse))
	}
	if m.hasLast {
		var wpm, acc *float64
		if m.last != nil {
			wpm, acc = m.last.WPM, m.last.Accuracy
		}
		segments = append(segments, fmt.Sprintf("Last %s WPM · %s", statsPkg.FormatFloat(wpm, ""), statsPkg.FormatFloat(acc, "%")))
	}
	if len(m.completed) > 0 {
		sum := statsPkg.Summarize(m.completed)
		segments = append(segments, fmt.Sprintf("Session %d verses · %s WPM", sum.Verses, statsPkg.FormatFloat(sum.WPM, "")))
	}
	if m.notice != "" {
		segments = append(segments, m.notice)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func blink() tea.Cmd {
	return tea.Tick(blinkInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
