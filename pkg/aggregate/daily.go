package aggregate

import "github.com/tammytan95/pilea/pkg/classify"

// Summary is the input/output aggregate over a set of transactions, keyed
// elsewhere by day or by consolidated window.
type Summary struct {
	Input        float64
	Output       float64
	Transactions []TaggedTransaction
}

// DailyBuckets groups tagged transactions by their exact date string. Every
// date present in the input appears as a key, and bucket contents keep the
// order the transactions arrived in.
func DailyBuckets(tagged []TaggedTransaction) map[string][]TaggedTransaction {
	buckets := make(map[string][]TaggedTransaction)

	for _, tx := range tagged {
		buckets[tx.Date] = append(buckets[tx.Date], tx)
	}

	return buckets
}

// DailySummaries folds each day bucket into input and output totals. For
// credit and depository accounts an amount >= 0 is money spent (output) and
// a negative amount is money received (input); a zero amount lands on the
// output side. Other account types contribute their transactions to the
// day's list but not to the totals.
func DailySummaries(buckets map[string][]TaggedTransaction) map[string]Summary {
	summaries := make(map[string]Summary, len(buckets))

	for date, txs := range buckets {
		var day Summary

		for _, tx := range txs {
			if tx.AccountType == classify.AccountTypeCredit || tx.AccountType == classify.AccountTypeDepository {
				if tx.Amount >= 0 {
					day.Output += tx.Amount
				} else {
					day.Input += -tx.Amount
				}
			}

			day.Transactions = append(day.Transactions, tx)
		}

		summaries[date] = day
	}

	return summaries
}

// ByDayAndAccount splits each day bucket further by account id.
func ByDayAndAccount(buckets map[string][]TaggedTransaction) map[string]map[string][]TaggedTransaction {
	grouped := make(map[string]map[string][]TaggedTransaction, len(buckets))

	for date, txs := range buckets {
		perAccount := make(map[string][]TaggedTransaction)
		for _, tx := range txs {
			perAccount[tx.AccountID] = append(perAccount[tx.AccountID], tx)
		}

		grouped[date] = perAccount
	}

	return grouped
}
