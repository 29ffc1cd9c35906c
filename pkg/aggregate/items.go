package aggregate

import "github.com/tammytan95/pilea/pkg/ledger"

// ItemWithAccounts pairs a linked item with the accounts that hang off it.
type ItemWithAccounts struct {
	ledger.Item
	Accounts []ledger.Account
}

// ItemAccounts groups accounts under the item they belong to. Items without
// accounts still appear, with an empty list.
func ItemAccounts(items []ledger.Item, accounts []ledger.Account) []ItemWithAccounts {
	grouped := make([]ItemWithAccounts, 0, len(items))

	for _, item := range items {
		entry := ItemWithAccounts{Item: item}

		for _, account := range accounts {
			if account.ItemID == item.ID {
				entry.Accounts = append(entry.Accounts, account)
			}
		}

		grouped = append(grouped, entry)
	}

	return grouped
}
