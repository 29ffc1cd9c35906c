package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tammytan95/pilea/internal/apiclient"
	"github.com/tammytan95/pilea/pkg/eventstream"
	"github.com/tammytan95/pilea/pkg/ledger"
)

const LogLevelEnv = "PILEA_LOG_LEVEL"

const (
	lookbackYears = 2
	dateLayout    = "2006-01-02"
)

var errSuperseded = errors.New("refresh superseded by a newer run")

// Syncer coordinates session state and data refreshes against the backend.
// All store writes funnel through it, so a failed flow leaves the store in
// its last known good state.
type Syncer struct {
	api   *apiclient.Client
	store *ledger.Store
	log   *logrus.Logger

	refreshGen uint64
	loading    func(active bool)
}

func New(api *apiclient.Client, store *ledger.Store) *Syncer {
	log := logrus.New()
	log.SetReportCaller(true)

	level, err := logrus.ParseLevel(os.Getenv(LogLevelEnv))
	if err != nil {
		level = logrus.InfoLevel
	}

	log.SetLevel(level)

	return &Syncer{
		api:   api,
		store: store,
		log:   log,
	}
}

// OnLoading registers a callback signalling when a refresh is in flight.
// It fires on start and, success or failure, on finish.
func (s *Syncer) OnLoading(fn func(active bool)) {
	s.loading = fn
}

func (s *Syncer) setLoading(active bool) {
	if s.loading != nil {
		s.loading(active)
	}
}

// Refresh clears the raw transactions and streams a fresh two year window
// from the backend, dispatching each event batch into the store as it
// arrives. Only the most recently started refresh writes to the store: an
// older in-flight run stops dispatching as soon as a newer one begins,
// though whatever it already committed stays.
func (s *Syncer) Refresh(ctx context.Context) error {
	gen := atomic.AddUint64(&s.refreshGen, 1)
	log := s.log.WithField("run", uuid.NewString())

	s.setLoading(true)
	defer s.setLoading(false)

	s.store.ResetTransactions()

	end := time.Now()
	start := end.AddDate(-lookbackYears, 0, 0)

	body, err := s.api.RefreshStream(ctx, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		log.WithError(err).Error("Failed to start refresh stream")
		return err
	}
	defer body.Close()

	// each invocation owns its own parse buffer
	parser := &eventstream.Parser{}
	chunk := make([]byte, 32*1024)
	closed := false

	for !closed {
		n, readErr := body.Read(chunk)

		if n > 0 {
			for _, event := range parser.Feed(chunk[:n]) {
				if event.ID == eventstream.CloseID {
					closed = true
				}

				if err := s.dispatch(gen, event); err != nil {
					if errors.Is(err, errSuperseded) {
						log.Info("Abandoning refresh, a newer run has started")
						return nil
					}

					log.WithError(err).Error("Failed to dispatch stream event")
					return err
				}
			}
		}

		if readErr == io.EOF {
			break
		}

		if readErr != nil {
			log.WithError(readErr).Error("Refresh stream read failed")
			return readErr
		}
	}

	// the backend touches item records during a refresh, pick them up
	items, err := s.api.Items(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch items after refresh")
		return err
	}

	if atomic.LoadUint64(&s.refreshGen) != gen {
		log.Info("Abandoning refresh, a newer run has started")
		return nil
	}

	s.store.ReplaceItems(items.Items)

	log.Info("Refresh complete")

	return nil
}

// dispatch applies one stream event to the store, unless this refresh has
// been superseded in the meantime.
func (s *Syncer) dispatch(gen uint64, event eventstream.Event) error {
	if atomic.LoadUint64(&s.refreshGen) != gen {
		return errSuperseded
	}

	switch event.Type {
	case eventstream.TypeCards:
		var cards []ledger.Account
		if err := json.Unmarshal([]byte(event.Data), &cards); err != nil {
			return fmt.Errorf("malformed cards payload: %w", err)
		}

		s.store.MergeAccounts(cards)
	case eventstream.TypeTransactions:
		var transactions []ledger.Transaction
		if err := json.Unmarshal([]byte(event.Data), &transactions); err != nil {
			return fmt.Errorf("malformed transactions payload: %w", err)
		}

		s.store.AppendTransactions(transactions)
	}

	return nil
}

// Login authenticates and immediately pulls the stored snapshot of cards,
// transactions and items. On failure the session is left unchanged.
func (s *Syncer) Login(ctx context.Context, username, password string) error {
	login, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.log.WithError(err).Error("Login failed")
		return err
	}

	s.store.SetSession(ledger.Session{
		LoggedIn: true,
		UserID:   login.ID,
		UserName: login.Username,
	})

	snapshot, err := s.api.RetrieveTransactions(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to retrieve stored transactions")
		return err
	}

	s.store.MergeAccounts(snapshot.Cards)
	s.store.AppendTransactions(snapshot.Transactions)
	s.store.ReplaceItems(snapshot.Items)

	return nil
}

// Logout ends the backend session and clears local identity state.
func (s *Syncer) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.log.WithError(err).Error("Logout failed")
		return err
	}

	s.store.ClearSession()

	return nil
}

// CreateUser registers a new user and starts a session for them.
func (s *Syncer) CreateUser(ctx context.Context, username, password string) error {
	created, err := s.api.CreateUser(ctx, username, password)
	if err != nil {
		s.log.WithError(err).Error("Create user failed")
		return err
	}

	s.store.SetSession(ledger.Session{
		LoggedIn: true,
		UserID:   created.UserID,
		UserName: created.Username,
	})

	return nil
}

// AddItem links a new financial connection and replaces the item list with
// the backend's updated view.
func (s *Syncer) AddItem(ctx context.Context, publicToken, alias string) error {
	response, err := s.api.AddItem(ctx, publicToken, alias)
	if err != nil {
		s.log.WithError(err).Error("Add item failed")
		return err
	}

	s.store.ReplaceItems(response.Items)

	return nil
}
