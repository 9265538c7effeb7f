package enums

import "fmt"

// SequenceSeries names a per-tenant monotonic numbering series.
type SequenceSeries string

const (
	SequenceSeriesOrders   SequenceSeries = "orders"
	SequenceSeriesExpenses SequenceSeries = "expenses"
)

// String implements fmt.Stringer.
func (s SequenceSeries) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SequenceSeries.
func (s SequenceSeries) IsValid() bool {
	return s == SequenceSeriesOrders || s == SequenceSeriesExpenses
}

// ParseSequenceSeries converts raw input into a SequenceSeries.
func ParseSequenceSeries(value string) (SequenceSeries, error) {
	switch SequenceSeries(value) {
	case SequenceSeriesOrders:
		return SequenceSeriesOrders, nil
	case SequenceSeriesExpenses:
		return SequenceSeriesExpenses, nil
	default:
		return "", fmt.Errorf("invalid sequence series %q", value)
	}
}
