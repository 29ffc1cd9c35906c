package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"k8s.io/klog"

	"github.com/tammytan95/pilea/internal/postgresutils"
	"github.com/tammytan95/pilea/pkg/aggregate"
	"github.com/tammytan95/pilea/pkg/classify"
	"github.com/tammytan95/pilea/pkg/ledger"
)

// ArchivedTransaction mirrors one raw synced transaction in postgres so the
// fetched history survives agent restarts and can be queried directly.
type ArchivedTransaction struct {
	bun.BaseModel    `bun:"table:transactions"`
	ID               int64  `bun:",pk,autoincrement"`
	TransactionID    string `bun:",unique"`
	AccountID        string
	AccountType      string
	TransactionDate  time.Time
	TransactionMonth time.Time
	Name             string
	Amount           float64
	Category         []string `bun:",array"`
	Countable        bool
	UpdatedAt        time.Time
}

type Archiver struct {
	db *bun.DB
}

func NewArchiver(db *bun.DB) *Archiver {
	return &Archiver{db: db}
}

func (a *Archiver) Migrate(ctx context.Context) error {
	_, err := a.db.NewCreateTable().Model((*ArchivedTransaction)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Archive upserts the store's raw transactions, annotated with resolved
// account type and countable flag. Re-archiving the same snapshot updates
// rows in place, keyed by the backend transaction id.
func (a *Archiver) Archive(ctx context.Context, transactions []ledger.Transaction, accounts []ledger.Account) (int, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	rows := make([]ArchivedTransaction, 0, len(transactions))

	for _, transaction := range transactions {
		row, err := a.createRowForTransaction(transaction, accounts)
		if err != nil {
			return 0, err
		}

		rows = append(rows, *row)
	}

	_, err := a.db.NewInsert().
		Model(&rows).
		On("CONFLICT (transaction_id) DO UPDATE").
		Set(postgresutils.TableSetString(a.db, (*ArchivedTransaction)(nil), "id", "transaction_id")).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("error writing to sql: %w", err)
	}

	klog.Infof("Wrote %d transactions to sql archive\n", len(rows))

	return len(rows), nil
}

func (a *Archiver) createRowForTransaction(transaction ledger.Transaction, accounts []ledger.Account) (*ArchivedTransaction, error) {
	t, err := time.Parse("2006-01-02", transaction.Date)
	if err != nil {
		return nil, fmt.Errorf("unable to parse date: %s", err.Error())
	}

	transactionMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	accountType := aggregate.AccountType(accounts, transaction.AccountID)

	return &ArchivedTransaction{
		TransactionID:    transaction.ID,
		AccountID:        transaction.AccountID,
		AccountType:      accountType,
		TransactionDate:  t,
		TransactionMonth: transactionMonth,
		Name:             transaction.Name,
		Amount:           transaction.Amount,
		Category:         transaction.Category,
		Countable:        classify.Keep(transaction, accountType),
		UpdatedAt:        time.Now(),
	}, nil
}
