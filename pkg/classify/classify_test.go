package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tammytan95/pilea/pkg/ledger"
)

func TestKeepDropsNonCountableCombinations(t *testing.T) {
	combos := []struct {
		accountType string
		amount      float64
		category    string
	}{
		{"credit", -5, "Payment"},
		{"depository", 5, "Payment"},
		{"credit", -5, "Transfer"},
		{"depository", 5, "CreditCard"},
		{"depository", 5, "Deposit"},
	}

	for _, combo := range combos {
		tx := ledger.Transaction{
			Amount:   combo.amount,
			Category: ledger.Category{combo.category},
		}

		assert.False(t, Keep(tx, combo.accountType), "%s %v %s should not be countable", combo.accountType, combo.amount, combo.category)
	}
}

func TestKeepKeepsUnlistedCombinations(t *testing.T) {
	// depository-negative-Transfer is deliberately not in the table
	tx := ledger.Transaction{Amount: -5, Category: ledger.Category{"Transfer"}}
	assert.True(t, Keep(tx, "depository"))

	tx = ledger.Transaction{Amount: 5, Category: ledger.Category{"Payment"}}
	assert.True(t, Keep(tx, "credit"))

	tx = ledger.Transaction{Amount: -5, Category: ledger.Category{"Food"}}
	assert.True(t, Keep(tx, "credit"))
}

func TestKeepWithoutCategory(t *testing.T) {
	tx := ledger.Transaction{Amount: -5}

	assert.True(t, Keep(tx, "credit"))
	assert.True(t, Keep(tx, "depository"))
	assert.True(t, Keep(tx, "brokerage"))
}

func TestKeepAnyMatchingTagDrops(t *testing.T) {
	tx := ledger.Transaction{Amount: -5, Category: ledger.Category{"Food", "Transfer"}}
	assert.False(t, Keep(tx, "credit"))

	// tag order does not matter
	tx.Category = ledger.Category{"Transfer", "Food"}
	assert.False(t, Keep(tx, "credit"))
}

func TestKeepZeroAmountCountsAsPositive(t *testing.T) {
	tx := ledger.Transaction{Amount: 0, Category: ledger.Category{"Deposit"}}

	assert.False(t, Keep(tx, "depository"))
	assert.True(t, Keep(tx, "credit"))
}

func TestKeepUnknownAccountType(t *testing.T) {
	tx := ledger.Transaction{Amount: 5, Category: ledger.Category{"Payment"}}

	assert.True(t, Keep(tx, ""))
	assert.True(t, Keep(tx, "loan"))
}
