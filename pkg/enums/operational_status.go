package enums

import "fmt"

// OperationalStatus tracks the production-pipeline stage of an order,
// independent of whether it has been paid.
type OperationalStatus string

const (
	OperationalStatusPending      OperationalStatus = "pending"
	OperationalStatusApproved     OperationalStatus = "approved"
	OperationalStatusInProduction OperationalStatus = "in_production"
	OperationalStatusProduced     OperationalStatus = "produced"
	OperationalStatusDelivered    OperationalStatus = "delivered"
)

// operationalStatusOrder fixes the pipeline sequence; transitions move one
// step at a time in either direction.
var operationalStatusOrder = []OperationalStatus{
	OperationalStatusPending,
	OperationalStatusApproved,
	OperationalStatusInProduction,
	OperationalStatusProduced,
	OperationalStatusDelivered,
}

// String implements fmt.Stringer.
func (o OperationalStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OperationalStatus.
func (o OperationalStatus) IsValid() bool {
	return o.Index() >= 0
}

// Index returns the position of the status in the pipeline, or -1 when unknown.
func (o OperationalStatus) Index() int {
	for i, candidate := range operationalStatusOrder {
		if candidate == o {
			return i
		}
	}
	return -1
}

// CanStepTo reports whether target is exactly one step forward or backward.
func (o OperationalStatus) CanStepTo(target OperationalStatus) bool {
	from := o.Index()
	to := target.Index()
	if from < 0 || to < 0 {
		return false
	}
	diff := to - from
	return diff == 1 || diff == -1
}

// ParseOperationalStatus converts raw input into an OperationalStatus.
func ParseOperationalStatus(value string) (OperationalStatus, error) {
	for _, candidate := range operationalStatusOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operational status %q", value)
}
