package metrics

const (
	Namespace          = "feedback"
	LedgerSubsystem    = "ledger"
	SequencerSubsystem = "sequencer"
	APISubsystem       = "api"
)

const (
	LedgerOperation = "operation"
	LedgerCode      = "code"
	LedgerChoice    = "choice"

	ChoiceDecided   = "decided"
	ChoiceUndecided = "undecided"
)
