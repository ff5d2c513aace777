// HTTP-layer error codes shared by all endpoints. Codes are lowercase
// snake_case and stable: clients branch on them programmatically while the
// accompanying message stays free to change.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeValidation       = "validation_failed"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeInvalidStatus    = "invalid_status"
	ErrCodeStorageFailed    = "storage_failed"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
