package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Contract is a compiled contract resolved from the project's artifact directories
type Contract struct {
	Name         string    `json:"name"`
	ArtifactPath string    `json:"artifactPath,omitempty"`
	Artifact     *Artifact `json:"artifact,omitempty"`
}

// BytecodeObject holds creation or runtime bytecode. Foundry writes an object with
// an "object" field, Hardhat writes a plain hex string; both decode into this type.
type BytecodeObject struct {
	Object         string         `json:"object"`
	LinkReferences map[string]any `json:"linkReferences,omitempty"`
}

func (b *BytecodeObject) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.Object = s
		return nil
	}
	type raw BytecodeObject
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("unsupported bytecode format: %w", err)
	}
	*b = BytecodeObject(r)
	return nil
}

// HasCode reports whether the bytecode is non-empty
func (b BytecodeObject) HasCode() bool {
	obj := strings.TrimPrefix(b.Object, "0x")
	return obj != ""
}

// NeedsLinking reports whether the bytecode contains unlinked library placeholders
func (b BytecodeObject) NeedsLinking() bool {
	return len(b.LinkReferences) > 0 || strings.Contains(b.Object, "__$")
}

// Artifact is a compilation artifact (Foundry out/ or Hardhat artifacts/)
type Artifact struct {
	ContractName     string          `json:"contractName,omitempty"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         BytecodeObject  `json:"bytecode"`
	DeployedBytecode BytecodeObject  `json:"deployedBytecode"`
}
