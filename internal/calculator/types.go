package calculator

import (
	"math"

	"go-chi-calculator/internal/calc"
)

// KeysRequest is the JSON body for POST /calculator/sessions/{id}/keys
// and POST /calculator/replay. Key, when set, is applied before Keys.
type KeysRequest struct {
	Key  string   `json:"key,omitempty"`
	Keys []string `json:"keys,omitempty"`
}

func (r KeysRequest) all() []string {
	if r.Key == "" {
		return r.Keys
	}
	return append([]string{r.Key}, r.Keys...)
}

// SessionResponse is the JSON view of a calculator session.
type SessionResponse struct {
	SessionID         string   `json:"session_id"`
	Display           string   `json:"display"`    // formatted, ready to show
	Expression        string   `json:"expression"` // trail of completed operations
	Raw               string   `json:"raw"`        // unformatted display value
	Operator          string   `json:"operator,omitempty"`
	Previous          *float64 `json:"previous,omitempty"`
	WaitingForOperand bool     `json:"waiting_for_operand"`
	Presses           int      `json:"presses"`
}

func newSessionResponse(id string, v calc.View, presses int) SessionResponse {
	return SessionResponse{
		SessionID:         id,
		Display:           v.Display,
		Expression:        v.Expression,
		Raw:               v.State.Display,
		Operator:          v.State.Operator.String(),
		Previous:          finitePrevious(v.State),
		WaitingForOperand: v.State.WaitingForOperand,
		Presses:           presses,
	}
}

// finitePrevious drops accumulators JSON cannot encode.
func finitePrevious(s calc.State) *float64 {
	if !s.HasPrevious || math.IsNaN(s.Previous) || math.IsInf(s.Previous, 0) {
		return nil
	}
	p := s.Previous
	return &p
}

// ReplayResponse is the JSON response for POST /calculator/replay.
type ReplayResponse struct {
	Steps      []ReplayStep `json:"steps"`
	Display    string       `json:"display"`
	Expression string       `json:"expression"`
}

// ReplayStep records the rendered outputs after one key.
type ReplayStep struct {
	Key        string `json:"key"`
	Display    string `json:"display"`
	Expression string `json:"expression"`
}
