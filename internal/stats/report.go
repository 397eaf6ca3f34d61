package stats

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/versetype/internal/bible"
	"github.com/verte-zerg/versetype/internal/model"
	"github.com/verte-zerg/versetype/internal/progress"
	"github.com/verte-zerg/versetype/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Records  []model.TypedVerse
	Overview progress.Overview
	Days     []Day
	Summary  Summary
}

// BuildReport loads the history matching cfg and aggregates it.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig, meta bible.Metadata, logger *zap.Logger) (Report, error) {
	records, err := st.ListTypedVerses(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load history: %w", err)
	}
	return NewReport(cfg.Translation, records, meta, time.Local, logger), nil
}

// NewReport aggregates records that are already loaded.
func NewReport(translation string, records []model.TypedVerse, meta bible.Metadata, loc *time.Location, logger *zap.Logger) Report {
	return Report{
		Records:  records,
		Overview: progress.Aggregate(translation, records, meta, logger),
		Days:     DailyLog(records, loc),
		Summary:  Summarize(records),
	}
}
