package classify

import "github.com/tammytan95/pilea/pkg/ledger"

// Account types whose transactions carry spending/income meaning.
const (
	AccountTypeCredit     = "credit"
	AccountTypeDepository = "depository"
)

// nonCountable lists accountType-sign-category combinations that represent
// money moving between a user's own accounts rather than real spending or
// income: credit card payments, transfers and their offsetting deposits.
var nonCountable = map[string]bool{
	"credit-negative-Payment":        true,
	"depository-positive-Payment":    true,
	"credit-negative-Transfer":       true,
	"depository-positive-CreditCard": true,
	"depository-positive-Deposit":    true,
}

// Keep reports whether a transaction counts toward spending and income
// summaries. Transactions without a category always count. Otherwise every
// category tag is checked against the non-countable table for the given
// account type and the sign of the amount; a single match drops the
// transaction.
func Keep(tx ledger.Transaction, accountType string) bool {
	if len(tx.Category) == 0 {
		return true
	}

	sign := "positive"
	if tx.Amount < 0 {
		sign = "negative"
	}

	for _, tag := range tx.Category {
		if nonCountable[accountType+"-"+sign+"-"+tag] {
			return false
		}
	}

	return true
}
