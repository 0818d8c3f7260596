package metrics

var (
	Ledger    = NopLedgerMetrics()
	Sequencer = NopSequencerMetrics()
	API       = NopAPIMetrics()
)
