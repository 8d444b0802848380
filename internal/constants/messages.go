package constants

// Error messages used in API responses.
// These are the human-readable messages returned in the "message" field.
// Internal details (store errors, stack traces) never belong here.
const (
	// Common messages
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "An internal error occurred"
	MsgUnauthorized       = "Unauthorized"
	MsgRateLimited        = "Too many requests, slow down"
	MsgServiceUnavailable = "Service temporarily unavailable"

	// Shortener-specific messages
	MsgInvalidURL         = "Invalid URL (must be http or https)"
	MsgInvalidAlias       = "Invalid custom alias"
	MsgAliasTaken         = "Custom alias is already taken"
	MsgLinkNotFound       = "Link not found"
	MsgLinkInactive       = "Link is no longer active"
	MsgLinkExpired        = "Link has expired"
	MsgLinkUnsafeRedirect = "Link target is not allowed"
)
