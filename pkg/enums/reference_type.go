package enums

// ReferenceType links a journal entry back to its originating record.
type ReferenceType string

const (
	ReferenceTypePayment ReferenceType = "payment"
	ReferenceTypeExpense ReferenceType = "expense"
	ReferenceTypeManual  ReferenceType = "manual"
)

// String implements fmt.Stringer.
func (r ReferenceType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReferenceType.
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceTypePayment, ReferenceTypeExpense, ReferenceTypeManual:
		return true
	default:
		return false
	}
}
