package order

// Status represents the fulfillment status of an order
type Status string

const (
	StatusPending    Status = "pending"    // Created, awaiting payment or processing
	StatusProcessing Status = "processing" // Paid, being prepared
	StatusShipped    Status = "shipped"    // Handed to the carrier
	StatusDelivered  Status = "delivered"  // Received by the customer
	StatusCompleted  Status = "completed"  // Closed successfully
	StatusCancelled  Status = "cancelled"  // Aborted before shipment
	StatusRefunded   Status = "refunded"   // Money returned after delivery
)

// IsValid checks if the status is a valid order Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for states with no outgoing transitions
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	case StatusDelivered:
		return target == StatusCompleted || target == StatusRefunded
	case StatusCompleted, StatusCancelled, StatusRefunded:
		return false // Terminal states
	}
	return false
}

// PaymentStatus represents the status of an order's payment, evolving
// independently of the fulfillment status
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the payment status can transition to the target
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusCompleted || target == PaymentStatusFailed
	case PaymentStatusCompleted:
		return target == PaymentStatusRefunded
	case PaymentStatusFailed, PaymentStatusRefunded:
		return false // Terminal states
	}
	return false
}
