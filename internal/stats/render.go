package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/versetype/internal/progress"
)

const missingValue = "-"

// RenderOverview writes one row per book. Books without progress are listed
// only when all is set.
func RenderOverview(w io.Writer, ov progress.Overview, all bool) error {
	books := ov.Books
	if !all {
		books = ov.Started()
	}
	if len(books) == 0 {
		_, err := fmt.Fprintf(w, "No verses typed in %s yet.\n", ov.Translation)
		return err
	}
	tbl := newTable(left("Book"), right("Prestige"), right("Typed"), right("Verses"), right("Progress"))
	for _, b := range books {
		tbl.addRow(
			b.Name,
			strconv.Itoa(b.Prestige),
			strconv.Itoa(b.TypedVersesInCurrentPrestige),
			strconv.Itoa(b.TotalVerses),
			formatPercent(b.Percentage),
		)
	}
	if err := tbl.write(w); err != nil {
		return err
	}
	if ov.Skipped > 0 {
		if _, err := fmt.Fprintf(w, "%d records skipped (unknown verse references)\n", ov.Skipped); err != nil {
			return err
		}
	}
	return nil
}

// RenderChapters writes the chapter breakdown of one book.
func RenderChapters(w io.Writer, b progress.BookOverview) error {
	if _, err := fmt.Fprintf(w, "%s (prestige %d, %s)\n", b.Name, b.Prestige, formatPercent(b.Percentage)); err != nil {
		return err
	}
	tbl := newTable(right("Chapter"), right("Typed"), right("Verses"), right("Progress"))
	for _, ch := range b.Chapters {
		tbl.addRow(
			strconv.Itoa(ch.Chapter),
			strconv.Itoa(ch.TypedVersesInCurrentPrestige),
			strconv.Itoa(ch.TotalVerses),
			formatPercent(ch.Percentage),
		)
	}
	return tbl.write(w)
}

// RenderLog writes the daily log followed by a WPM trend sparkline smoothed
// over window days.
func RenderLog(w io.Writer, days []Day, window int) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, "No typing history yet.")
		return err
	}
	tbl := newTable(left("Date"), right("Verses"), right("WPM"), right("Accuracy"), right("Corrected"))
	for _, d := range days {
		tbl.addRow(
			d.Date.Format("2006-01-02"),
			strconv.Itoa(d.Summary.Verses),
			FormatFloat(d.Summary.WPM, ""),
			FormatFloat(d.Summary.Accuracy, "%"),
			FormatFloat(d.Summary.CorrectedAccuracy, "%"),
		)
	}
	if err := tbl.write(w); err != nil {
		return err
	}
	trend := WPMTrend(days)
	if len(trend) < 2 {
		return nil
	}
	_, err := fmt.Fprintf(w, "\nWPM trend: %s\n", Sparkline(MovingAverage(trend, window)))
	return err
}

// FormatFloat renders v with one decimal, or "-" when it is unknown.
func FormatFloat(v *float64, suffix string) string {
	if v == nil {
		return missingValue
	}
	return fmt.Sprintf("%.1f%s", *v, suffix)
}

func formatPercent(p int) string {
	return strconv.Itoa(p) + "%"
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
