package ledger

import "sync"

// Store holds the raw synced state: transactions, accounts, items and the
// session. Every mutation happens under one lock and bumps the affected
// collection's version, so a whole batch lands atomically and derived views
// can tell cheaply whether their inputs moved. Accessors hand out copies.
type Store struct {
	mu             sync.Mutex
	transactions   []Transaction
	accounts       []Account
	items          []Item
	session        Session
	txVersion      uint64
	accountVersion uint64
	itemVersion    uint64
}

func NewStore() *Store {
	return &Store{}
}

// AppendTransactions adds a fetched batch to the end of the transaction list.
func (s *Store) AppendTransactions(batch []Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append(s.transactions, batch...)
	s.txVersion++
}

// ResetTransactions clears the transaction list ahead of a refresh.
func (s *Store) ResetTransactions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = nil
	s.txVersion++
}

// MergeAccounts adds accounts that are not already known. The first record
// seen for an account id wins; later duplicates are dropped.
func (s *Store) MergeAccounts(batch []Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range batch {
		if s.hasAccount(account.AccountID) {
			continue
		}

		s.accounts = append(s.accounts, account)
	}

	s.accountVersion++
}

func (s *Store) hasAccount(id string) bool {
	for _, account := range s.accounts {
		if account.AccountID == id {
			return true
		}
	}

	return false
}

// ReplaceItems swaps the item list wholesale.
func (s *Store) ReplaceItems(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]Item(nil), items...)
	s.itemVersion++
}

func (s *Store) SetSession(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
}

func (s *Store) ClearSession() {
	s.SetSession(Session{})
}

func (s *Store) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session
}

// Transactions returns a copy of the transaction list and its version.
func (s *Store) Transactions() ([]Transaction, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Transaction(nil), s.transactions...), s.txVersion
}

// Accounts returns a copy of the account list and its version.
func (s *Store) Accounts() ([]Account, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Account(nil), s.accounts...), s.accountVersion
}

// Items returns a copy of the item list and its version.
func (s *Store) Items() ([]Item, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Item(nil), s.items...), s.itemVersion
}

// AccessTokens lists the access tokens of the currently linked items.
func (s *Store) AccessTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := make([]string, 0, len(s.items))
	for _, item := range s.items {
		tokens = append(tokens, item.AccessToken)
	}

	return tokens
}

// Versions reports the current transaction, account and item versions
// without copying any data.
func (s *Store) Versions() (tx, accounts, items uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.txVersion, s.accountVersion, s.itemVersion
}
