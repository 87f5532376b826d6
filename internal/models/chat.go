// internal/models/chat.go
package models

import "time"

// TurnState tracks the lifecycle of a chat turn.
type TurnState string

const (
	TurnPending  TurnState = "pending"
	TurnResolved TurnState = "resolved"
	TurnFailed   TurnState = "failed"
)

// ChatTurn is one user message plus its resulting assistant reply. A turn is
// created as a pending placeholder when the user submits, mutated exactly once
// when the pipeline resolves (replacing the placeholder by turn id, never by
// position), and is immutable thereafter.
type ChatTurn struct {
	ID           int64        `json:"id"`
	SessionID    string       `json:"sessionId"`
	UserText     string       `json:"userText"`
	State        TurnState    `json:"state"`
	Result       *QueryResult `json:"result,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	SubmittedAt  time.Time    `json:"submittedAt"`
	ResolvedAt   *time.Time   `json:"resolvedAt,omitempty"`
}
