package errors

// pre-defined `Errors`
var (
	OverflowError               = NewError(100, "arithmetic overflow")
	PollNotFound                = NewError(101, "poll does not exist")
	AlreadyResponded            = NewError(102, "account has responded for this poll")
	PollExpired                 = NewError(103, "poll has expired")
	PollStillActive             = NewError(104, "poll is still active")
	InvalidAccount              = NewError(105, "invalid account")
	StorageRecordDoesNotExist   = NewError(106, "record does not exist in storage")
	StorageRecordAlreadyExists  = NewError(107, "record already exists in storage")
	StorageCoreError            = NewError(108, "storage error")
	BadRequestParameter         = NewError(109, "bad request parameter")
	SignatureVerificationFailed = NewError(110, "signature verification failed")
	SequencerStopped            = NewError(111, "sequencer is stopped")
	InvalidHash                 = NewError(112, "invalid hash")
)
