package aggregate

import (
	"github.com/tammytan95/pilea/pkg/classify"
	"github.com/tammytan95/pilea/pkg/ledger"
)

// TaggedTransaction is a transaction annotated with the type of the account
// it belongs to. Tagged transactions are derived state; they are recomputed,
// never stored.
type TaggedTransaction struct {
	ledger.Transaction
	AccountType string
}

// AccountType resolves an account id to its type. The first account with a
// matching id wins; an unknown id resolves to the empty type, which never
// matches the non-countable table.
func AccountType(accounts []ledger.Account, id string) string {
	for _, account := range accounts {
		if account.AccountID == id {
			return account.Type
		}
	}

	return ""
}

// Tag annotates each transaction with its resolved account type and drops
// the ones that classify as non-countable. Relative order is preserved.
func Tag(transactions []ledger.Transaction, accounts []ledger.Account) []TaggedTransaction {
	tagged := make([]TaggedTransaction, 0, len(transactions))

	for _, tx := range transactions {
		accountType := AccountType(accounts, tx.AccountID)
		if !classify.Keep(tx, accountType) {
			continue
		}

		tagged = append(tagged, TaggedTransaction{Transaction: tx, AccountType: accountType})
	}

	return tagged
}
