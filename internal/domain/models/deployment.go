package models

import (
	"fmt"
	"time"
)

// Deployment is a persisted contract deployment. It is what makes re-running a plan
// idempotent: a deploy step whose deployment exists for the network is not sent again.
type Deployment struct {
	Network      string    `json:"network"`
	ChainID      uint64    `json:"chainId"`
	Name         string    `json:"name"`     // Step name, e.g. "DEX"
	Contract     string    `json:"contract"` // Artifact name, e.g. "DEX"
	Address      string    `json:"address"`
	TxHash       string    `json:"txHash"`
	BlockNumber  uint64    `json:"blockNumber"`
	BytecodeHash string    `json:"bytecodeHash,omitempty"`
	Deployer     string    `json:"deployer,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ID returns the registry key of the deployment
func (d *Deployment) ID() string {
	return fmt.Sprintf("%s/%s", d.Network, d.Name)
}

// Record converts the stored deployment into a ledger record for reuse
func (d *Deployment) Record() Record {
	return Record{
		Step:        d.Name,
		Kind:        StepDeploy,
		Contract:    d.Contract,
		Address:     d.Address,
		BlockNumber: d.BlockNumber,
		Receipt: &Receipt{
			TxHash:      d.TxHash,
			BlockNumber: d.BlockNumber,
		},
		Status: StatusSuccess,
		Reused: true,
	}
}
