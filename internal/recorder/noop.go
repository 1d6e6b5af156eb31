package recorder

// NoopRecorder discards all records. Used when no database is configured.
type NoopRecorder struct{}

// NewNoopRecorder returns a recorder that drops everything.
func NewNoopRecorder() NoopRecorder { return NoopRecorder{} }

func (NoopRecorder) RecordAnalysis(rec *AnalysisRecord) error { return nil }
func (NoopRecorder) RecordOrder(rec *OrderRecord) error       { return nil }
func (NoopRecorder) Close() error                             { return nil }
