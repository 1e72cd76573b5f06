package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown  ErrorCode = 1
	ErrCodeInternal ErrorCode = 2

	// Validation errors (100-199)
	ErrCodeInvalidRequest       ErrorCode = 100
	ErrCodeInvalidParameter     ErrorCode = 101
	ErrCodeInvalidCandle        ErrorCode = 102
	ErrCodeInvalidTimeframe     ErrorCode = 103
	ErrCodeInvalidConfiguration ErrorCode = 104
	ErrCodeIncompatibleSchema   ErrorCode = 105

	// Strategy errors (200-299)
	ErrCodeUnknownStrategy ErrorCode = 200
	ErrCodeSignalFailed    ErrorCode = 201

	// Engine errors (300-399)
	ErrCodeBacktestFailed   ErrorCode = 300
	ErrCodeBacktestCanceled ErrorCode = 301

	// Store errors (400-499)
	ErrCodeRunNotFound ErrorCode = 400
	ErrCodeStoreInit   ErrorCode = 401
	ErrCodeStoreQuery  ErrorCode = 402
	ErrCodeStoreWrite  ErrorCode = 403

	// Risk errors (500-599)
	ErrCodeAssessmentFailed ErrorCode = 500

	// Market data errors (600-699)
	ErrCodeMarketDataFetchFailed ErrorCode = 600
	ErrCodeMarketDataWriteFailed ErrorCode = 601
	ErrCodeMarketDataReadFailed  ErrorCode = 602
	ErrCodeInvalidProvider       ErrorCode = 603
)
