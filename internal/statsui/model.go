// Package statsui provides the Bubble Tea history interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/versetype/internal/bible"
	"github.com/verte-zerg/versetype/internal/model"
	"github.com/verte-zerg/versetype/internal/progress"
	"github.com/verte-zerg/versetype/internal/stats"
)

const (
	tabOverview = iota
	tabBooks
	tabLog
)

const (
	filterTranslation = iota
	filterSince
	filterBook
)

const barWidth = 12

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// ReportFunc loads the history report for a filter.
type ReportFunc func(ctx context.Context, cfg model.HistoryConfig) (stats.Report, error)

// Model implements the Bubble Tea history UI.
type Model struct {
	load ReportFunc
	meta bible.Metadata
	cfg  model.HistoryConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	bookTable table.Model
	// drillBook is the slug of the book whose chapters are listed, if any.
	drillBook string

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a history UI model.
func NewModel(load ReportFunc, meta bible.Metadata, cfg model.HistoryConfig) *Model {
	m := &Model{
		load: load,
		meta: meta,
		cfg:  cfg,
		tabs: []string{"Overview", "Books", "Log"},
	}
	m.initInputs()
	m.initViewports()
	m.bookTable = table.New(table.WithFocused(true))
	m.bookTable.SetStyles(tableStyles())
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabBooks && m.drillBook == "" {
				m.drillIn()
			}
			return m, nil
		case "esc", "backspace":
			if m.activeTab == tabBooks && m.drillBook != "" {
				m.drillOut()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabBooks {
				m.bookTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabBooks {
				m.bookTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabBooks {
				var cmd tea.Cmd
				m.bookTable, cmd = m.bookTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Translation: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Book: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[filterTranslation].SetValue(m.cfg.Translation)
	if m.cfg.Since != nil {
		m.filterInputs[filterSince].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[filterSince].SetValue("")
	}
	m.filterInputs[filterBook].SetValue(m.cfg.Book)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.bookTable.SetWidth(m.width)
	m.bookTable.SetHeight(maxInt(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabBooks {
		m.bookTable.Focus()
	} else {
		m.bookTable.Blur()
	}
}

func (m *Model) refreshReport() {
	report, err := m.load(context.Background(), m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load history.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	if _, ok := m.report.Overview.Book(m.drillBook); !ok {
		m.drillBook = ""
	}
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
	m.viewports[tabLog].SetContent(renderLog(m.report.Days, m.cfg.CurveWindow))
	m.applyBookTable()
}

func (m *Model) drillIn() {
	idx := m.bookTable.Cursor()
	books := m.report.Overview.Books
	if idx < 0 || idx >= len(books) {
		return
	}
	m.drillBook = books[idx].Book
	m.applyBookTable()
	m.bookTable.GotoTop()
}

func (m *Model) drillOut() {
	slug := m.drillBook
	m.drillBook = ""
	m.applyBookTable()
	for i, b := range m.report.Overview.Books {
		if b.Book == slug {
			m.bookTable.SetCursor(i)
			break
		}
	}
}

func (m *Model) applyBookTable() {
	var cols []table.Column
	var rows []table.Row
	if b, ok := m.report.Overview.Book(m.drillBook); ok && m.drillBook != "" {
		cols, rows = chapterTableData(b)
	} else {
		cols, rows = bookTableData(m.report.Overview)
	}
	// Rows must be cleared before columns shrink. Clearing moves the cursor
	// to -1, so it is restored afterwards.
	cur := m.bookTable.Cursor()
	m.bookTable.SetRows(nil)
	m.bookTable.SetColumns(cols)
	m.bookTable.SetRows(rows)
	m.bookTable.SetCursor(max(0, min(cur, len(rows)-1)))
}

func bookTableData(ov progress.Overview) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Book", Width: 16},
		{Title: "Prestige", Width: 8},
		{Title: "Typed", Width: 6},
		{Title: "Verses", Width: 6},
		{Title: "Progress", Width: barWidth + 6},
	}
	rows := make([]table.Row, 0, len(ov.Books))
	for _, b := range ov.Books {
		rows = append(rows, table.Row{
			b.Name,
			strconv.Itoa(b.Prestige),
			strconv.Itoa(b.TypedVersesInCurrentPrestige),
			strconv.Itoa(b.TotalVerses),
			progressBar(b.Percentage),
		})
	}
	return columns, rows
}

func chapterTableData(b progress.BookOverview) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Chapter", Width: 8},
		{Title: "Typed", Width: 6},
		{Title: "Verses", Width: 6},
		{Title: "Last typed", Width: 10},
		{Title: "Progress", Width: barWidth + 6},
	}
	rows := make([]table.Row, 0, len(b.Chapters))
	for _, ch := range b.Chapters {
		rows = append(rows, table.Row{
			strconv.Itoa(ch.Chapter),
			strconv.Itoa(ch.TypedVersesInCurrentPrestige),
			strconv.Itoa(ch.TotalVerses),
			lastTyped(ch),
			progressBar(ch.Percentage),
		})
	}
	return columns, rows
}

func lastTyped(ch progress.ChapterOverview) string {
	var last time.Time
	for _, v := range ch.Verses {
		if v.LastTypedAt.After(last) {
			last = v.LastTypedAt
		}
	}
	if last.IsZero() {
		return "-"
	}
	return last.Local().Format("2006-01-02")
}

func progressBar(pct int) string {
	filled := pct * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + fmt.Sprintf(" %3d%%", pct)
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Records) == 0 {
		return "No verses typed yet."
	}
	started := report.Overview.Started()
	cards := []string{
		metricCard("Verses", strconv.Itoa(report.Summary.Verses)),
		metricCard("Books started", strconv.Itoa(len(started))),
		metricCard("Avg WPM", stats.FormatFloat(report.Summary.WPM, "")),
		metricCard("Avg Acc", stats.FormatFloat(report.Summary.Accuracy, "%")),
		metricCard("Corrected Acc", stats.FormatFloat(report.Summary.CorrectedAccuracy, "%")),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3], cards[4])
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	lines := []string{summary}
	if trend := stats.WPMTrend(report.Days); len(trend) > 1 {
		spark := stats.Sparkline(stats.MovingAverage(trend, window))
		lines = append(lines, "", headerStyle.Render(fmt.Sprintf("Daily WPM (window %d)", window)), spark)
	}
	if report.Overview.Skipped > 0 {
		lines = append(lines, "", errorStyle.Render(fmt.Sprintf("%d records reference unknown verses and were skipped.", report.Overview.Skipped)))
	}
	return strings.Join(lines, "\n")
}

func renderLog(days []stats.Day, window int) string {
	var buf bytes.Buffer
	if err := stats.RenderLog(&buf, days, window); err != nil {
		return fmt.Sprintf("Failed to render log: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	translation := m.cfg.Translation
	if translation == "" {
		translation = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	book := "all"
	if m.cfg.Book != "" {
		book = m.cfg.Book
	}
	summary := fmt.Sprintf("Settings: translation=%s  since=%s  book=%s  window=%d", translation, since, book, m.cfg.CurveWindow)
	if m.activeTab == tabBooks && m.drillBook != "" {
		if b, ok := m.report.Overview.Book(m.drillBook); ok {
			summary += fmt.Sprintf("  showing %s (prestige %d)", b.Name, b.Prestige)
		}
	}
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	if m.activeTab == tabBooks {
		if m.drillBook == "" {
			help = "Nav: left/right  Move: up/down  Chapters: enter  Settings: /  Quit: q"
		} else {
			help = "Nav: left/right  Move: up/down  Books: esc  Settings: /  Quit: q"
		}
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return fitLines(strings.Join(lines, "\n"), m.width, height)
	}
	if m.activeTab == tabBooks {
		if m.errMsg != "" {
			return fitLines("Failed to load history.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.bookTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	translation := strings.TrimSpace(m.filterInputs[filterTranslation].Value())
	if translation == "" {
		return fmt.Errorf("translation must not be empty")
	}

	var since *time.Time
	if input := strings.TrimSpace(m.filterInputs[filterSince].Value()); input != "" {
		parsed, err := time.ParseInLocation("2006-01-02", input, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	book := ""
	if input := strings.TrimSpace(m.filterInputs[filterBook].Value()); input != "" {
		b, err := m.meta.ResolveBook(input)
		if err != nil {
			return err
		}
		book = b.Slug
	}

	m.cfg.Translation = translation
	m.cfg.Since = since
	m.cfg.Book = book
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
