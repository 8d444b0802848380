package constants

// Error codes used in API responses.
// These are the machine-readable codes returned in the "error" field.
const (
	// Common error codes
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// Shortener-specific codes
	CodeInvalidURL         = "INVALID_URL"
	CodeInvalidAlias       = "INVALID_ALIAS"
	CodeAliasTaken         = "ALIAS_TAKEN"
	CodeLinkNotFound       = "LINK_NOT_FOUND"
	CodeLinkInactive       = "LINK_INACTIVE"
	CodeLinkExpired        = "LINK_EXPIRED"
	CodeLinkUnsafeRedirect = "LINK_UNSAFE_REDIRECT"

	// Success codes
	CodeLinkCreated = "LINK_CREATED"
)
