package aggregate

import (
	"sync"

	"github.com/tammytan95/pilea/pkg/ledger"
)

// View is a memoized window onto a store's derived state. Each stage keeps
// its last result together with the store versions it was computed from and
// recomputes only when those inputs have moved, so repeated reads over a
// large transaction list cost a version check, not a re-aggregation.
type View struct {
	store *ledger.Store
	mu    sync.Mutex

	txVersion      uint64
	accountVersion uint64
	fresh          bool

	tagged       []TaggedTransaction
	buckets      map[string][]TaggedTransaction
	dailies      map[string]Summary
	byCategory   map[string]GroupTotal
	byName       map[string]GroupTotal
	byDayAccount map[string]map[string][]TaggedTransaction

	windowDays int
	windows    map[string]Summary
}

func NewView(store *ledger.Store) *View {
	return &View{store: store}
}

// sync recomputes the tagged transaction list when the store has moved and
// invalidates everything derived from it. Caller holds v.mu.
func (v *View) sync() {
	txVersion, accountVersion, _ := v.store.Versions()
	if v.fresh && txVersion == v.txVersion && accountVersion == v.accountVersion {
		return
	}

	transactions, txVersion := v.store.Transactions()
	accounts, accountVersion := v.store.Accounts()

	v.tagged = Tag(transactions, accounts)
	v.txVersion = txVersion
	v.accountVersion = accountVersion
	v.fresh = true

	v.buckets = nil
	v.dailies = nil
	v.byCategory = nil
	v.byName = nil
	v.byDayAccount = nil
	v.windows = nil
	v.windowDays = 0
}

// Tagged returns the countable transactions annotated with account types.
func (v *View) Tagged() []TaggedTransaction {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sync()

	return v.tagged
}

// Daily returns the tagged transactions grouped by date.
func (v *View) Daily() map[string][]TaggedTransaction {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sync()

	return v.dailyLocked()
}

func (v *View) dailyLocked() map[string][]TaggedTransaction {
	if v.buckets == nil {
		v.buckets = DailyBuckets(v.tagged)
	}

	return v.buckets
}

// DailySummaries returns the per-day input/output summaries.
func (v *View) DailySummaries() map[string]Summary {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sync()

	return v.dailySummariesLocked()
}

func (v *View) dailySummariesLocked() map[string]Summary {
	if v.dailies == nil {
		v.dailies = DailySummaries(v.dailyLocked())
	}

	return v.dailies
}

// ByCategory returns totals grouped by first category tag.
func (v *View) ByCategory() map[string]GroupTotal {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sync()

	if v.byCategory == nil {
		v.byCategory = ByCategory(v.tagged)
	}

	return v.byCategory
}

// ByName returns totals grouped by merchant name.
func (v *View) ByName() map[string]GroupTotal {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sync()

	if v.byName == nil {
		v.byName = ByName(v.tagged)
	}

	return v.byName
}

// ByDayAndAccount returns each day's transactions grouped by account id.
func (v *View) ByDayAndAccount() map[string]map[string][]TaggedTransaction {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sync()

	if v.byDayAccount == nil {
		v.byDayAccount = ByDayAndAccount(v.dailyLocked())
	}

	return v.byDayAccount
}

// Windows returns the daily summaries consolidated into windows of the given
// number of days. The cache holds one window size at a time; asking for a
// different size recomputes.
func (v *View) Windows(days int) map[string]Summary {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sync()

	if v.windows == nil || v.windowDays != days {
		v.windows = Consolidate(v.dailySummariesLocked(), days)
		v.windowDays = days
	}

	return v.windows
}

// Selected resolves the chosen window key at the given window size.
func (v *View) Selected(days int, key string) Summary {
	return Selected(v.Windows(days), key)
}
