package validation

const (
	// External reference formats
	UPIRefLength      = 12
	MinBankRefLength  = 6
	MaxBankRefLength  = 64
	MaxAttachmentRef  = 255
	MaxRejectReason   = 500
	MaxInstructionLen = 1000
)
