package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/tammytan95/pilea/pkg/ledger"
)

// Client talks to the pilea backend. The cookie jar carries the session
// cookie set by login, standing in for the browser's credentialed fetches.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar},
	}, nil
}

// APIResponse is the envelope every backend response carries.
type APIResponse struct {
	Success bool            `json:"success"`
	Status  string          `json:"status"`
	Error   json.RawMessage `json:"error"`
}

type LoginResponse struct {
	APIResponse
	Username string `json:"username"`
	ID       int64  `json:"id"`
}

type CreateUserResponse struct {
	APIResponse
	Username string `json:"username"`
	UserID   int64  `json:"userId"`
}

type ItemsResponse struct {
	APIResponse
	Items []ledger.Item `json:"items"`
}

type RetrieveResponse struct {
	APIResponse
	Cards        []ledger.Account     `json:"cards"`
	Transactions []ledger.Transaction `json:"transactions"`
	Items        []ledger.Item        `json:"items"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	response := LoginResponse{}
	err := c.doJSON(ctx, http.MethodPost, "/user/login", map[string]string{
		"username": username,
		"password": password,
	}, &response)
	if err != nil {
		return nil, err
	}

	return &response, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/user/logout", nil, nil)
}

func (c *Client) CreateUser(ctx context.Context, username, password string) (*CreateUserResponse, error) {
	response := CreateUserResponse{}
	err := c.doJSON(ctx, http.MethodPost, "/user/create", map[string]string{
		"username": username,
		"password": password,
	}, &response)
	if err != nil {
		return nil, err
	}

	return &response, nil
}

func (c *Client) AddItem(ctx context.Context, publicToken, alias string) (*ItemsResponse, error) {
	response := ItemsResponse{}
	err := c.doJSON(ctx, http.MethodPost, "/items/add", map[string]string{
		"publicToken": publicToken,
		"alias":       alias,
	}, &response)
	if err != nil {
		return nil, err
	}

	return &response, nil
}

func (c *Client) Items(ctx context.Context) (*ItemsResponse, error) {
	response := ItemsResponse{}
	err := c.doJSON(ctx, http.MethodGet, "/items", nil, &response)
	if err != nil {
		return nil, err
	}

	return &response, nil
}

// RetrieveTransactions fetches the stored cards+transactions+items snapshot.
func (c *Client) RetrieveTransactions(ctx context.Context) (*RetrieveResponse, error) {
	response := RetrieveResponse{}
	err := c.doJSON(ctx, http.MethodGet, "/transactions", nil, &response)
	if err != nil {
		return nil, err
	}

	return &response, nil
}

// RefreshStream starts a streaming refresh over the given date range and
// returns the response body for incremental reading. The caller closes it.
func (c *Client) RefreshStream(ctx context.Context, start, end string) (io.ReadCloser, error) {
	raw, err := json.Marshal(map[string]string{
		"start": start,
		"end":   end,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions/refresh", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	rs, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error starting refresh stream: %s", err)
	}

	if rs.StatusCode >= 400 {
		rs.Body.Close()
		return nil, fmt.Errorf("refresh returned status %d", rs.StatusCode)
	}

	return rs.Body, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rs, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling %s: %s", path, err)
	}

	defer rs.Body.Close()

	raw, err := io.ReadAll(rs.Body)
	if err != nil {
		return fmt.Errorf("error reading %s response: %s", path, err)
	}

	if rs.StatusCode >= 400 {
		return fmt.Errorf("%s returned status %d: %s", path, rs.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(raw, out)
}
