package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidDate    ErrCode = "INVALID_DATE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Scheduling ────────────────────────────────────────────────────
	ErrScheduleConflict ErrCode = "SCHEDULE_CONFLICT"

	// ─── Media / OCR ───────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrOCRUnavailable  ErrCode = "OCR_UNAVAILABLE"
	ErrOCRFailed       ErrCode = "OCR_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token required."
	case ErrTokenInvalid:
		return "Invalid authentication token."
	case ErrTokenExpired:
		return "Authentication token has expired."
	case ErrEmailTaken:
		return "A faculty account with this email already exists."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidDate:
		return "Invalid date. Expected YYYY-MM-DD."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDependencyExists:
		return "Resource cannot be deleted because other data still references it."

	// ─── Scheduling ────────────────────────────────────────────────────
	case ErrScheduleConflict:
		return "Time slot conflicts with existing schedule"

	// ─── Media / OCR ───────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Only JPEG and PNG images are allowed."
	case ErrFileTooLarge:
		return "File size exceeds the limit."
	case ErrOCRUnavailable:
		return "Text detection is not available."
	case ErrOCRFailed:
		return "Failed to process the image."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
