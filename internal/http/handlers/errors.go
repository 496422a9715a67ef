package handlers

// Error codes carried in ErrorResponse.Code. Clients branch on these, so
// values never change once shipped. Unauthorized and RateLimited are written
// by middleware and listed here to keep the catalog in one place.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeTooLarge     = "payload_too_large"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	ErrCodeMethodNotAllowed = "method_not_allowed"

	// accounts
	ErrCodeEmailTaken         = "email_taken"
	ErrCodeInvalidCredentials = "invalid_credentials"

	// recipes and plans
	ErrCodeInvalidImage = "invalid_image"
	ErrCodeCreateFailed = "create_failed"
	ErrCodeListFailed   = "list_failed"
	ErrCodeExportFailed = "export_failed"
)
