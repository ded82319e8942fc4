package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordStatus is the outcome of a step
type RecordStatus string

const (
	StatusSuccess RecordStatus = "success"
	StatusFailed  RecordStatus = "failed"
	// StatusUnconfirmed marks a transaction that was sent but whose confirmations
	// were not observed in time
	StatusUnconfirmed RecordStatus = "unconfirmed"
)

// Receipt is the part of a transaction receipt the sequencer keeps
type Receipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
}

// Record is the outcome of a single step. Records are stored and returned by value
// so a written record cannot be changed through the ledger.
type Record struct {
	Step        string       `json:"step"`
	Kind        StepKind     `json:"kind"`
	Contract    string       `json:"contract,omitempty"`
	Address     string       `json:"address,omitempty"`
	To          string       `json:"to,omitempty"`
	Receipt     *Receipt     `json:"receipt,omitempty"`
	BlockNumber uint64       `json:"blockNumber,omitempty"`
	Status      RecordStatus `json:"status"`
	Reused      bool         `json:"reused,omitempty"`
	Error       string       `json:"error,omitempty"`
	RecordedAt  time.Time    `json:"recordedAt"`
}

// Succeeded reports whether the step completed successfully
func (r Record) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Ledger is the ordered, append-only record of a run
type Ledger struct {
	records []Record
	index   map[string]int
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{index: make(map[string]int)}
}

// Append adds a record. A step can only be recorded once per run.
func (l *Ledger) Append(r Record) error {
	if _, exists := l.index[r.Step]; exists {
		return fmt.Errorf("step %q already recorded", r.Step)
	}
	if r.Receipt != nil {
		receipt := *r.Receipt
		r.Receipt = &receipt
	}
	l.index[r.Step] = len(l.records)
	l.records = append(l.records, r)
	return nil
}

// Get returns the record of the named step
func (l *Ledger) Get(step string) (Record, bool) {
	i, ok := l.index[step]
	if !ok {
		return Record{}, false
	}
	return copyRecord(l.records[i]), true
}

// Records returns all records in execution order
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	for i, r := range l.records {
		out[i] = copyRecord(r)
	}
	return out
}

// Len returns the number of records
func (l *Ledger) Len() int {
	return len(l.records)
}

// Snapshot returns an independent copy of the ledger
func (l *Ledger) Snapshot() *Ledger {
	snap := NewLedger()
	for _, r := range l.records {
		_ = snap.Append(r)
	}
	return snap
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Records())
}

func (l *Ledger) UnmarshalJSON(data []byte) error {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	*l = *NewLedger()
	for _, r := range records {
		if err := l.Append(r); err != nil {
			return err
		}
	}
	return nil
}

func copyRecord(r Record) Record {
	if r.Receipt != nil {
		receipt := *r.Receipt
		r.Receipt = &receipt
	}
	return r
}
