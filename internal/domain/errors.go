package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrArtifactNotFound is returned when no compiled artifact matches a contract name
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrUnknownAccount is returned when a named account is not configured
	ErrUnknownAccount = errors.New("unknown account")

	// ErrNotConnected is returned when the chain client is used before Connect
	ErrNotConnected = errors.New("not connected to blockchain")

	// ErrReverted is returned when a mined transaction has a failed status
	ErrReverted = errors.New("transaction reverted")
)

// Deployment error kinds. Each is usable with errors.Is against a *DeploymentError.
var (
	// ErrInvalidPlan means the step list is malformed; nothing was sent to the chain.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrUnresolvedReference means a step argument points at a step with no usable record.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrSubmissionFailure means the chain definitely rejected the transaction.
	ErrSubmissionFailure = errors.New("submission failure")

	// ErrConfirmationTimeout means the transaction outcome is unknown and must be reconciled.
	ErrConfirmationTimeout = errors.New("confirmation timeout")

	// ErrNotRecorded means a contract was deployed but the deployment registry write failed.
	ErrNotRecorded = errors.New("deployment not recorded")
)

// DeploymentError is returned by a sequencer run that did not complete. It carries a
// snapshot of the ledger as it was when the run halted.
type DeploymentError struct {
	Kind   error
	Step   string
	Err    error
	Ledger *models.Ledger
}

func (e *DeploymentError) Error() string {
	var b strings.Builder
	if e.Step != "" {
		fmt.Fprintf(&b, "step %q: ", e.Step)
	}
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error.
func (e *DeploymentError) Is(target error) bool {
	return e.Kind == target
}

// Retryable reports whether re-running the whole plan is safe without manual
// reconciliation. A confirmation timeout leaves the chain state unknown and an
// unrecorded deployment would be sent again.
func (e *DeploymentError) Retryable() bool {
	return e.Kind != ErrConfirmationTimeout && e.Kind != ErrNotRecorded
}

// PlanIssue describes a single problem found while validating a plan.
type PlanIssue struct {
	Step       string
	Message    string
	Suggestion string
}

func (i PlanIssue) String() string {
	s := fmt.Sprintf("%s: %s", i.Step, i.Message)
	if i.Suggestion != "" {
		s += fmt.Sprintf(" (did you mean %q?)", i.Suggestion)
	}
	return s
}

// PlanValidationErr collects every issue found in a plan
type PlanValidationErr struct {
	Issues []PlanIssue
}

func (e PlanValidationErr) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0].String()
	}
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = "  - " + issue.String()
	}
	return fmt.Sprintf("%d problems found:\n%s", len(e.Issues), strings.Join(lines, "\n"))
}
