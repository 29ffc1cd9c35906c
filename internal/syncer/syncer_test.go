package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tammytan95/pilea/internal/apiclient"
	"github.com/tammytan95/pilea/pkg/ledger"
)

type testBackend struct {
	mux *http.ServeMux

	refreshBody   string
	refreshStatus int
	// when set, the refresh handler blocks after writing the body until the
	// channel closes, simulating a connection the server holds open
	refreshHold chan struct{}
	// when set, replaces the default refresh handler entirely
	refreshFunc http.HandlerFunc

	refreshRequests int
	items           []ledger.Item
}

func newTestBackend() *testBackend {
	b := &testBackend{
		mux:           http.NewServeMux(),
		refreshStatus: http.StatusOK,
		items:         []ledger.Item{{ID: 1, UserID: 7, AccessToken: "tok-1"}},
	}

	b.mux.HandleFunc("/user/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		if body["password"] != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"success":false,"status":"bad credentials"}`)
			return
		}

		fmt.Fprint(w, `{"success":true,"username":"carmen","id":7}`)
	})

	b.mux.HandleFunc("/user/logout", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true}`)
	})

	b.mux.HandleFunc("/user/create", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"username":"newuser","userId":9}`)
	})

	b.mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"success": true,
			"cards": [{"account_id":"checking","type":"depository","name":"Everyday Checking"}],
			"transactions": [{"transaction_id":"stored-1","account_id":"checking","amount":12.5,"date":"2024-01-01","name":"Grocer"}],
			"items": [{"id":1,"userId":7,"accessToken":"tok-1"}]
		}`)
	})

	b.mux.HandleFunc("/transactions/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshRequests++

		if b.refreshFunc != nil {
			b.refreshFunc(w, r)
			return
		}

		if b.refreshStatus != http.StatusOK {
			w.WriteHeader(b.refreshStatus)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, b.refreshBody)

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		if b.refreshHold != nil {
			<-b.refreshHold
		}
	})

	b.mux.HandleFunc("/items", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := json.Marshal(b.items)
		fmt.Fprintf(w, `{"success":true,"items":%s}`, raw)
	})

	b.mux.HandleFunc("/items/add", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"items":[{"id":1,"userId":7,"accessToken":"tok-1"},{"id":2,"userId":7,"accessToken":"tok-2","alias":"joint"}]}`)
	})

	return b
}

func newTestSyncer(t *testing.T, backend *testBackend) (*Syncer, *ledger.Store) {
	t.Helper()

	server := httptest.NewServer(backend.mux)
	t.Cleanup(server.Close)

	api, err := apiclient.New(server.URL)
	require.NoError(t, err)

	store := ledger.NewStore()

	return New(api, store), store
}

const refreshStream = "event: cards\n" +
	"data: [{\"account_id\":\"card\",\"type\":\"credit\",\"name\":\"Rewards Card\"}]\n" +
	"\n" +
	"event: transactions\n" +
	"data: [{\"transaction_id\":\"s1\",\"account_id\":\"card\",\"amount\":20,\"date\":\"2024-01-02\",\"name\":\"Cafe\"}]\n" +
	"\n" +
	"event: transactions\n" +
	"data: [{\"transaction_id\":\"s2\",\"account_id\":\"card\",\"amount\":-100,\"date\":\"2024-01-03\",\"category\":[\"Payment\"],\"name\":\"Card Payment\"}]\n" +
	"\n" +
	"id: CLOSE\n" +
	"\n"

func TestLoginPopulatesSessionAndSnapshot(t *testing.T) {
	syncer, store := newTestSyncer(t, newTestBackend())

	err := syncer.Login(context.Background(), "carmen", "hunter2")
	require.NoError(t, err)

	session := store.Session()
	assert.True(t, session.LoggedIn)
	assert.Equal(t, int64(7), session.UserID)
	assert.Equal(t, "carmen", session.UserName)

	transactions, _ := store.Transactions()
	assert.Len(t, transactions, 1)
	assert.Equal(t, "stored-1", transactions[0].ID)

	accounts, _ := store.Accounts()
	assert.Len(t, accounts, 1)

	items, _ := store.Items()
	assert.Len(t, items, 1)
}

func TestLoginFailureLeavesSessionUnchanged(t *testing.T) {
	syncer, store := newTestSyncer(t, newTestBackend())

	err := syncer.Login(context.Background(), "carmen", "wrong")
	assert.Error(t, err)
	assert.False(t, store.Session().LoggedIn)
}

func TestRefreshStreamsIntoStore(t *testing.T) {
	backend := newTestBackend()
	backend.refreshBody = refreshStream

	syncer, store := newTestSyncer(t, backend)

	var loading []bool
	syncer.OnLoading(func(active bool) { loading = append(loading, active) })

	// stale state from a previous refresh should be cleared
	store.AppendTransactions([]ledger.Transaction{{ID: "stale"}})

	err := syncer.Refresh(context.Background())
	require.NoError(t, err)

	transactions, _ := store.Transactions()
	require.Len(t, transactions, 2)
	assert.Equal(t, "s1", transactions[0].ID)
	assert.Equal(t, "s2", transactions[1].ID)

	accounts, _ := store.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, "credit", accounts[0].Type)

	items, _ := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "tok-1", items[0].AccessToken)

	assert.Equal(t, []bool{true, false}, loading)
}

func TestRefreshStopsOnCloseSentinel(t *testing.T) {
	backend := newTestBackend()
	backend.refreshBody = refreshStream
	backend.refreshHold = make(chan struct{})
	defer close(backend.refreshHold)

	syncer, store := newTestSyncer(t, backend)

	done := make(chan error, 1)
	go func() { done <- syncer.Refresh(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("refresh did not terminate on CLOSE while the connection stayed open")
	}

	transactions, _ := store.Transactions()
	assert.Len(t, transactions, 2)
}

func TestRefreshLatestTriggerWins(t *testing.T) {
	backend := newTestBackend()

	firstStreaming := make(chan struct{})
	release := make(chan struct{})

	backend.refreshFunc = func(w http.ResponseWriter, r *http.Request) {
		if backend.refreshRequests == 1 {
			fmt.Fprint(w, "event: transactions\ndata: [{\"transaction_id\":\"old-1\",\"account_id\":\"card\",\"amount\":20,\"date\":\"2024-01-02\",\"name\":\"Cafe\"}]\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

			close(firstStreaming)
			<-release

			fmt.Fprint(w, "event: transactions\ndata: [{\"transaction_id\":\"old-2\",\"account_id\":\"card\",\"amount\":5,\"date\":\"2024-01-03\",\"name\":\"Cafe\"}]\n\nid: CLOSE\n\n")
			return
		}

		fmt.Fprint(w, "event: transactions\ndata: [{\"transaction_id\":\"new-1\",\"account_id\":\"card\",\"amount\":7,\"date\":\"2024-01-04\",\"name\":\"Bakery\"}]\n\nid: CLOSE\n\n")
	}

	syncer, store := newTestSyncer(t, backend)

	firstDone := make(chan error, 1)
	go func() { firstDone <- syncer.Refresh(context.Background()) }()

	<-firstStreaming

	// batches the first run committed before being superseded did land
	require.Eventually(t, func() bool {
		transactions, _ := store.Transactions()
		return len(transactions) == 1 && transactions[0].ID == "old-1"
	}, 5*time.Second, 10*time.Millisecond)

	// a newer trigger takes over while the first connection is still open
	require.NoError(t, syncer.Refresh(context.Background()))

	close(release)

	select {
	case err := <-firstDone:
		require.NoError(t, err, "a superseded refresh finishes quietly")
	case <-time.After(5 * time.Second):
		t.Fatal("superseded refresh did not return")
	}

	transactions, _ := store.Transactions()
	require.Len(t, transactions, 1)
	assert.Equal(t, "new-1", transactions[0].ID, "a superseded run stops dispatching into the store")
}

func TestRefreshFailureClearsLoading(t *testing.T) {
	backend := newTestBackend()
	backend.refreshStatus = http.StatusInternalServerError

	syncer, store := newTestSyncer(t, backend)

	var loading []bool
	syncer.OnLoading(func(active bool) { loading = append(loading, active) })

	err := syncer.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []bool{true, false}, loading)

	items, _ := store.Items()
	assert.Empty(t, items, "failed refresh must not touch items")
}

func TestRefreshMalformedPayload(t *testing.T) {
	backend := newTestBackend()
	backend.refreshBody = "event: transactions\ndata: not json\n\nid: CLOSE\n\n"

	syncer, store := newTestSyncer(t, backend)

	err := syncer.Refresh(context.Background())
	assert.Error(t, err)

	transactions, _ := store.Transactions()
	assert.Empty(t, transactions, "malformed batch must not land in the store")
}

func TestLogoutClearsSession(t *testing.T) {
	syncer, store := newTestSyncer(t, newTestBackend())

	store.SetSession(ledger.Session{LoggedIn: true, UserID: 7, UserName: "carmen"})

	err := syncer.Logout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ledger.Session{}, store.Session())
}

func TestCreateUserSetsSession(t *testing.T) {
	syncer, store := newTestSyncer(t, newTestBackend())

	err := syncer.CreateUser(context.Background(), "newuser", "hunter2")
	require.NoError(t, err)

	session := store.Session()
	assert.True(t, session.LoggedIn)
	assert.Equal(t, int64(9), session.UserID)
	assert.Equal(t, "newuser", session.UserName)
}

func TestAddItemReplacesItems(t *testing.T) {
	syncer, store := newTestSyncer(t, newTestBackend())

	err := syncer.AddItem(context.Background(), "public-token", "joint")
	require.NoError(t, err)

	items, _ := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "joint", items[1].Alias)
}
