package payment

// Method identifies how an order is paid
type Method string

const (
	MethodCOD      Method = "cod"      // Cash on delivery, collected physically
	MethodRazorpay Method = "razorpay" // Hosted gateway with client-side checkout
)

// IsValid checks if the method is supported
func (m Method) IsValid() bool {
	switch m {
	case MethodCOD, MethodRazorpay:
		return true
	}
	return false
}

// String returns the string representation of Method
func (m Method) String() string {
	return string(m)
}

// RequiresGatewayHandshake returns true when payment completes through an
// out-of-band verify callback rather than at order creation
func (m Method) RequiresGatewayHandshake() bool {
	return m == MethodRazorpay
}
