package models

import "time"

// RunStatus is the final state of a plan run
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is a stored snapshot of a plan execution
type Run struct {
	ID         string    `json:"id"`
	Plan       string    `json:"plan"`
	PlanPath   string    `json:"planPath,omitempty"`
	Network    string    `json:"network"`
	ChainID    uint64    `json:"chainId"`
	Sender     string    `json:"sender"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"errorKind,omitempty"`
	FailedStep string    `json:"failedStep,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Ledger     *Ledger   `json:"ledger"`
}
