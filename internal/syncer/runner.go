package syncer

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"k8s.io/klog"

	"github.com/tammytan95/pilea/internal/apiclient"
	"github.com/tammytan95/pilea/internal/archive"
	"github.com/tammytan95/pilea/internal/config"
	"github.com/tammytan95/pilea/internal/postgresutils"
	"github.com/tammytan95/pilea/internal/report"
	"github.com/tammytan95/pilea/pkg/aggregate"
	"github.com/tammytan95/pilea/pkg/ledger"
)

// SyncRunner wires a full sync: log in, stream a refresh into the store,
// then archive the raw transactions and report summary windows. The archive
// and report sinks are optional; each is enabled by its config being set.
type SyncRunner struct {
	syncer   *Syncer
	store    *ledger.Store
	view     *aggregate.View
	archiver *archive.Archiver
	reporter *report.Reporter
	db       *bun.DB
}

func NewSyncRunner() (*SyncRunner, error) {
	api, err := apiclient.New(config.CurrentAPIConfig().BaseURL)
	if err != nil {
		return nil, err
	}

	store := ledger.NewStore()

	runner := &SyncRunner{
		syncer: New(api, store),
		store:  store,
		view:   aggregate.NewView(store),
	}

	runner.syncer.OnLoading(func(active bool) {
		klog.Infof("Refresh loading: %v\n", active)
	})

	if config.CurrentConfig().SQL.Database != "" || config.CurrentSecrets().DatabaseURL != "" {
		db, err := postgresutils.CreatePostgresClient(config.CurrentConfig().SQL.Database)
		if err != nil {
			return nil, fmt.Errorf("Error connecting to postgres DB: %s", err)
		}

		runner.db = db
		runner.archiver = archive.NewArchiver(db)
	}

	if config.CurrentInfluxSecrets().InfluxEndpoint != "" {
		influxClient, err := report.CreateInfluxClient(*config.CurrentInfluxSecrets())
		if err != nil {
			return nil, fmt.Errorf("Error creating InfluxDB Client: %s", err.Error())
		}

		err = report.CreateDatabase(influxClient, config.CurrentConfig().Influx.Database)
		if err != nil {
			return nil, fmt.Errorf("Error creating DB: %s", err.Error())
		}

		runner.reporter = report.NewReporter(influxClient, config.CurrentConfig().Influx, fidelity(), config.CurrentSyncConfig().SelectedDate)
	}

	return runner, nil
}

func fidelity() int {
	days := config.CurrentSyncConfig().Fidelity
	if days < 1 {
		days = 1
	}

	return days
}

func (r *SyncRunner) Run() error {
	ctx := context.Background()
	creds := config.CurrentPileaSecrets()

	if err := r.syncer.Login(ctx, creds.Username, creds.Password); err != nil {
		return err
	}

	if err := r.syncer.Refresh(ctx); err != nil {
		return err
	}

	if r.archiver != nil {
		if err := r.archiver.Migrate(ctx); err != nil {
			return err
		}

		transactions, _ := r.store.Transactions()
		accounts, _ := r.store.Accounts()

		if _, err := r.archiver.Archive(ctx, transactions, accounts); err != nil {
			return err
		}
	}

	if r.reporter != nil {
		if err := r.reporter.WriteSummaries(r.view); err != nil {
			return err
		}
	}

	return nil
}

func (r *SyncRunner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}

	return nil
}

// RegisterRunner creates the configured user on the backend.
type RegisterRunner struct {
	syncer *Syncer
}

func NewRegisterRunner() (*RegisterRunner, error) {
	api, err := apiclient.New(config.CurrentAPIConfig().BaseURL)
	if err != nil {
		return nil, err
	}

	return &RegisterRunner{syncer: New(api, ledger.NewStore())}, nil
}

func (r *RegisterRunner) Run() error {
	creds := config.CurrentPileaSecrets()

	err := r.syncer.CreateUser(context.Background(), creds.Username, creds.Password)
	if err != nil {
		return err
	}

	klog.Infof("Created user %s\n", creds.Username)

	return nil
}
