package enums

import "fmt"

// TransactionType signs a journal entry against its account balance.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	switch TransactionType(value) {
	case TransactionTypeCredit:
		return TransactionTypeCredit, nil
	case TransactionTypeDebit:
		return TransactionTypeDebit, nil
	default:
		return "", fmt.Errorf("invalid transaction type %q", value)
	}
}
