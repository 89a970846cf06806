package metrics

import "time"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Used by tests and when no metrics address is configured.
type NopMetrics struct{}

var _ Collector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordAllocationRun discards the run metric.
func (n *NopMetrics) RecordAllocationRun(_ string, _ time.Duration) {}

// RecordAssignments discards the assignment count.
func (n *NopMetrics) RecordAssignments(_ string, _ int) {}

// RecordUnassigned discards the unassigned count.
func (n *NopMetrics) RecordUnassigned(_, _ string, _ int) {}

// RecordSquadsCreated discards the squad count.
func (n *NopMetrics) RecordSquadsCreated(_ int) {}

// RecordManualPlacement discards the placement outcome.
func (n *NopMetrics) RecordManualPlacement(_ string) {}
