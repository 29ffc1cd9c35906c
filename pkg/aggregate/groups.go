package aggregate

// GroupTotal is the amount sum and transaction list for one grouping key.
type GroupTotal struct {
	Amount       float64
	Transactions []TaggedTransaction
}

// ByCategory groups tagged transactions by their first (coarsest) category
// tag. Transactions without a category are left out of this view only; they
// still show up in the daily summaries.
func ByCategory(tagged []TaggedTransaction) map[string]GroupTotal {
	groups := make(map[string]GroupTotal)

	for _, tx := range tagged {
		if len(tx.Category) == 0 {
			continue
		}

		key := tx.Category[0]
		group := groups[key]
		group.Amount += tx.Amount
		group.Transactions = append(group.Transactions, tx)
		groups[key] = group
	}

	return groups
}

// ByName groups tagged transactions by exact merchant name.
func ByName(tagged []TaggedTransaction) map[string]GroupTotal {
	groups := make(map[string]GroupTotal)

	for _, tx := range tagged {
		if tx.Name == "" {
			continue
		}

		group := groups[tx.Name]
		group.Amount += tx.Amount
		group.Transactions = append(group.Transactions, tx)
		groups[tx.Name] = group
	}

	return groups
}
