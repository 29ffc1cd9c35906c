package ledger

import (
	"encoding/json"
	"strings"
)

// Transaction is one bank transaction as delivered by the backend. Records
// are never rewritten once ingested; refreshes only append.
type Transaction struct {
	ID        string   `json:"transaction_id"`
	AccountID string   `json:"account_id"`
	Amount    float64  `json:"amount"`
	Date      string   `json:"date"`
	Category  Category `json:"category"`
	Name      string   `json:"name"`
}

// Account is one bank account or card under a linked item.
type Account struct {
	AccountID    string `json:"account_id"`
	ItemID       int64  `json:"itemId"`
	UserID       int64  `json:"userId"`
	Name         string `json:"name"`
	OfficialName string `json:"official_name"`
	Type         string `json:"type"`
}

// DisplayName prefers the bank's official account name when present.
func (a Account) DisplayName() string {
	if a.OfficialName != "" {
		return a.OfficialName
	}

	return a.Name
}

// Item is one linked financial connection: the credential record a set of
// accounts hangs off, not an account itself.
type Item struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	AccessToken string `json:"accessToken"`
	LastUpdated string `json:"lastUpdated,omitempty"`
	Alias       string `json:"alias,omitempty"`
}

// Session is the current identity state.
type Session struct {
	LoggedIn bool
	UserID   int64
	UserName string
}

// Category is an ordered list of category tags, coarsest first. The backend
// sends it either as a JSON string array or, for rows that went through
// postgres, as a stringified array like {"Transfer","Credit"}.
type Category []string

func (c *Category) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*c = list
		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*c = ParseCategory(raw)

	return nil
}

// ParseCategory splits a stringified category array into ordered tags.
func ParseCategory(raw string) Category {
	cleaned := strings.NewReplacer("{", "", "}", "", `"`, "").Replace(raw)
	if cleaned == "" {
		return nil
	}

	parts := strings.Split(cleaned, ",")
	tags := make(Category, 0, len(parts))

	for _, part := range parts {
		tags = append(tags, strings.TrimSpace(part))
	}

	return tags
}
