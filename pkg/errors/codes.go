package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeBadRequest     ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_003"
	ErrCodeConflict       ErrorCode = "COMMON_004"
	ErrCodeValidation     ErrorCode = "COMMON_005"
	ErrCodeSerialization  ErrorCode = "COMMON_006"
	ErrCodeStorageError   ErrorCode = "COMMON_007"
	ErrCodeNotImplemented ErrorCode = "COMMON_008"
)

// Pipeline Error Codes
const (
	// ErrCodeStructureParse marks a structure string that cannot be converted
	// into a fingerprint.  Recovered locally: the record is dropped, the batch
	// continues.
	ErrCodeStructureParse ErrorCode = "CTA_001"

	// ErrCodeConfiguration marks an out-of-range parameter rejected at the
	// boundary before any processing begins.
	ErrCodeConfiguration ErrorCode = "CTA_002"

	// ErrCodeMissingInput marks an absent query file.  Surfaced as a per-file
	// skip; the remaining files are still processed.
	ErrCodeMissingInput ErrorCode = "CTA_003"

	// ErrCodeEmptyResult marks a query or reference set that yields zero
	// similarity matches above threshold.  Not fatal.
	ErrCodeEmptyResult ErrorCode = "CTA_004"

	// ErrCodeReferenceStore marks a corrupt or absent CTA reference artifact.
	ErrCodeReferenceStore ErrorCode = "CTA_005"

	// ErrCodeDatasetExists marks an attempt to re-derive an already
	// initialized CTA dataset without an explicit force request.
	ErrCodeDatasetExists ErrorCode = "CTA_006"
)

// Aliases kept short for call-site readability.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeStorage        = ErrCodeStorageError
	CodeStructureParse = ErrCodeStructureParse
	CodeConfiguration  = ErrCodeConfiguration
	CodeMissingInput   = ErrCodeMissingInput
	CodeEmptyResult    = ErrCodeEmptyResult
	CodeReferenceStore = ErrCodeReferenceStore
	CodeDatasetExists  = ErrCodeDatasetExists
	CodeUnknown        = ErrorCode("UNKNOWN")
	CodeOK             = ErrorCode("OK")
)
