package metrics

// InitPrometheusMetrics swaps the discarding metrics for prometheus ones.
// It must be called once, before the node starts serving.
func InitPrometheusMetrics() {
	Version = PromVersion()
	Ledger = PromLedgerMetrics()
	Sequencer = PromSequencerMetrics()
	API = PromAPIMetrics()
}
