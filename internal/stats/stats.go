// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/versetype/internal/matcher"
	"github.com/verte-zerg/versetype/internal/model"
	"github.com/verte-zerg/versetype/internal/passage"
)

const sparkChars = " .:-=+*#%@"

// ForVerse derives WPM, accuracy and corrected accuracy from the keystroke
// log of a verse. It returns nil when there is no log.
//
// WPM counts words typed exactly right per minute between the first and last
// keystroke. Accuracy is the share of typed characters that were right when
// typed, including ones later erased. Corrected accuracy only considers the
// characters that remain in the final typed position.
func ForVerse(ref []passage.Atom, log []model.Keystroke) *model.VerseStats {
	if len(log) == 0 {
		return nil
	}
	entries := matcher.Trace(ref, log)
	if len(entries) == 0 {
		return nil
	}
	var correct, survived, survivedCorrect int
	for _, e := range entries {
		if e.Correct {
			correct++
		}
		if e.Survived {
			survived++
			if e.Correct {
				survivedCorrect++
			}
		}
	}
	out := &model.VerseStats{}
	out.Accuracy = ratio(correct, len(entries))
	out.CorrectedAccuracy = ratio(survivedCorrect, survived)

	elapsed := log[len(log)-1].Time.Sub(log[0].Time)
	if elapsed > 0 {
		words := matcher.CorrectWords(matcher.Replay(ref, log), ref)
		wpm := float64(words) / elapsed.Minutes()
		out.WPM = &wpm
	}
	return out
}

func ratio(n, total int) *float64 {
	if total <= 0 {
		return nil
	}
	v := float64(n) / float64(total) * 100
	return &v
}

// Average returns the mean of the non-nil values, or nil if there are none.
func Average(values []*float64) *float64 {
	var sum float64
	n := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// Summary holds averaged stats over a set of typed verses.
type Summary struct {
	Verses            int
	WPM               *float64
	Accuracy          *float64
	CorrectedAccuracy *float64
}

// Summarize averages stats across records. Records without stats count
// toward Verses but not toward any average.
func Summarize(records []model.TypedVerse) Summary {
	wpm := make([]*float64, 0, len(records))
	acc := make([]*float64, 0, len(records))
	corrected := make([]*float64, 0, len(records))
	for _, rec := range records {
		if rec.Stats == nil {
			continue
		}
		wpm = append(wpm, rec.Stats.WPM)
		acc = append(acc, rec.Stats.Accuracy)
		corrected = append(corrected, rec.Stats.CorrectedAccuracy)
	}
	return Summary{
		Verses:            len(records),
		WPM:               Average(wpm),
		Accuracy:          Average(acc),
		CorrectedAccuracy: Average(corrected),
	}
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
