package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput      = "INVALID_INPUT"
	CodeValidation        = "VALIDATION_ERROR"
	CodeMissingField      = "MISSING_FIELD"
	CodeInvalidRange      = "INVALID_RANGE"
	CodeMissingComment    = "MISSING_COMMENT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInvalidState      = "INVALID_STATE"
	CodeAlreadyCheckedIn  = "ALREADY_CHECKED_IN"
	CodeAlreadyCheckedOut = "ALREADY_CHECKED_OUT"
	CodeNotCheckedIn      = "NOT_CHECKED_IN"
	CodeAlreadyProcessed  = "ALREADY_PROCESSED"
	CodeStorageConflict   = "STORAGE_CONFLICT"
	CodeTooManyRequests   = "TOO_MANY_REQUESTS"
	CodeProcessing        = "PROCESSING"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeBackfillIncomplete = "BACKFILL_INCOMPLETE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
