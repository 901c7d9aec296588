package ledger

import (
	"github.com/shopspring/decimal"

	"bankledger/internal/domain"
)

// Decision is the outcome of the balance invariant check. NewBalance is only
// meaningful when Admitted is true.
type Decision struct {
	Admitted   bool
	NewBalance decimal.Decimal
}

// Admit decides whether a movement is admissible against the current balance
// and computes the resulting balance. Pure; callers have already validated
// that amount is strictly positive and typ is a known type.
//
// A withdrawal of exactly the current balance is admitted and yields zero.
func Admit(balance, amount decimal.Decimal, typ domain.TransactionType) Decision {
	switch typ {
	case domain.Deposit:
		return Decision{Admitted: true, NewBalance: balance.Add(amount)}
	case domain.Withdrawal:
		if amount.GreaterThan(balance) {
			return Decision{}
		}
		return Decision{Admitted: true, NewBalance: balance.Sub(amount)}
	default:
		return Decision{}
	}
}
