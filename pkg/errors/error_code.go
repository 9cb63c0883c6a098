package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter      ErrorCode = 100
	ErrCodeInvalidConfiguration  ErrorCode = 101
	ErrCodeInvalidPeriod         ErrorCode = 102
	ErrCodeInvalidType           ErrorCode = 103
	ErrCodeMissingParameter      ErrorCode = 104
	ErrCodeSchemaVersionMismatch ErrorCode = 105

	// Table errors (200-299)
	ErrCodeUnknownColumn   ErrorCode = 200
	ErrCodeDuplicateColumn ErrorCode = 201
	ErrCodeLengthMismatch  ErrorCode = 202
	ErrCodeUnorderedDates  ErrorCode = 203
	ErrCodeDuplicateDate   ErrorCode = 204

	// Ingestion errors (300-399)
	ErrCodeInputAbsent           ErrorCode = 300
	ErrCodeIngestFailed          ErrorCode = 301
	ErrCodeDataSourceUnavailable ErrorCode = 302
	ErrCodeQueryFailed           ErrorCode = 303

	// Indicator errors (400-499)
	ErrCodeMissingRequiredColumn  ErrorCode = 400
	ErrCodeInsufficientHistory    ErrorCode = 401
	ErrCodeIndicatorNotFound      ErrorCode = 402
	ErrCodeIndicatorAlreadyExists ErrorCode = 403
	ErrCodeIndicatorCalculation   ErrorCode = 404

	// Report errors (500-599)
	ErrCodeEmptySelection     ErrorCode = 500
	ErrCodeReportFailed       ErrorCode = 501
	ErrCodeModelUnavailable   ErrorCode = 502
	ErrCodeReportHTTPFailure  ErrorCode = 503
	ErrCodeReportParseFailure ErrorCode = 504

	// Pipeline errors (600-699)
	ErrCodePipelineConfigError  ErrorCode = 600
	ErrCodePipelineNoDatasource ErrorCode = 601
	ErrCodePipelineNotIdle      ErrorCode = 602

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704
)
