package shared

// DomainError is an error with a stable machine-readable code that
// survives the trip to API responses and audit records
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a domain error with the given code and message
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinel errors shared across the domain packages
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidTransition   = NewDomainError("INVALID_TRANSITION", "Transition not allowed from current status")
	ErrOutOfStock          = NewDomainError("OUT_OF_STOCK", "Insufficient stock available")
	ErrCartInvalid         = NewDomainError("CART_INVALID", "Cart failed validation against current catalog state")
	ErrInvalidSignature    = NewDomainError("INVALID_SIGNATURE", "Payment callback signature verification failed")
	ErrGatewayUnavailable  = NewDomainError("GATEWAY_UNAVAILABLE", "Payment gateway temporarily unavailable")
)
