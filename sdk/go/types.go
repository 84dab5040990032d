package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// PlayerBalance describes the /players/{name} response.
type PlayerBalance struct {
	Player  string `json:"player"`
	Balance int64  `json:"balance"`
	Found   bool   `json:"found"`
}

// PlayerRank describes the /players/{name}/rank response.
type PlayerRank struct {
	Rank   int  `json:"rank"`
	Ranked bool `json:"ranked"`
}

// Entry is one leaderboard row from /top.
type Entry struct {
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// Transaction mirrors the public JSON surface of core.Transaction.
type Transaction struct {
	Type         string `json:"type"`
	Time         string `json:"time"`
	Player       string `json:"player"`
	Counterparty string `json:"counterparty,omitempty"`
	Old          int64  `json:"old_balance"`
	New          int64  `json:"new_balance"`
	Amount       int64  `json:"amount"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("request failed: status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("request failed: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyPlayer is returned when the player name is empty.
var ErrEmptyPlayer = errors.New("player name is required")
