package recorder

import (
	"time"

	"OptionSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordOutliers(_ model.VariantName, _ []model.Classified, _, _ string, _ time.Time) error {
	return nil
}
func (n *NoopRecorder) FileProcessed(_, _ string, _ model.VariantName) (bool, error) {
	return false, nil
}
func (n *NoopRecorder) MarkFileProcessed(_, _ string, _ model.VariantName, _ int) error { return nil }
func (n *NoopRecorder) RecordTrade(_ *TradeRecord) error                               { return nil }
func (n *NoopRecorder) RecordAccount(_ string, _, _, _ float64) error                  { return nil }
func (n *NoopRecorder) CleanupAfterHour(_ model.VariantName, _ int) (int64, error)     { return 0, nil }
func (n *NoopRecorder) Close() error                                                   { return nil }
