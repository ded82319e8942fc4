package models

import (
	"fmt"
	"math/big"
	"time"
)

// StepKind distinguishes contract creation from state-mutating calls
type StepKind string

const (
	StepDeploy StepKind = "deploy"
	StepCall   StepKind = "call"
)

// ArgumentKind tells the sequencer how to resolve an argument
type ArgumentKind string

const (
	ArgLiteral   ArgumentKind = "literal"
	ArgReference ArgumentKind = "ref"
	ArgAccount   ArgumentKind = "account"
)

// Argument is a constructor or method argument. Literals are passed to the chain
// client as-is; references resolve to the address produced by an earlier step and
// account arguments to the address of a named account.
type Argument struct {
	Kind  ArgumentKind
	Value any
	Name  string
}

// Literal creates a literal argument
func Literal(v any) Argument {
	return Argument{Kind: ArgLiteral, Value: v}
}

// Ref creates a reference to the address produced by the named step
func Ref(step string) Argument {
	return Argument{Kind: ArgReference, Name: step}
}

// Account creates a reference to a named account address
func Account(name string) Argument {
	return Argument{Kind: ArgAccount, Name: name}
}

func (a Argument) String() string {
	switch a.Kind {
	case ArgReference:
		return "@" + a.Name
	case ArgAccount:
		return "account:" + a.Name
	default:
		if v, ok := a.Value.(*big.Int); ok {
			return v.String()
		}
		return fmt.Sprint(a.Value)
	}
}

// ConfirmationPolicy decides how many blocks to wait for after a transaction is
// mined. ByChain overrides Count for specific chain IDs.
type ConfirmationPolicy struct {
	Count   uint64
	ByChain map[uint64]uint64
}

// For returns the confirmation count to use on the given chain
func (p ConfirmationPolicy) For(chainID uint64) uint64 {
	if n, ok := p.ByChain[chainID]; ok {
		return n
	}
	return p.Count
}

// Step is a single entry of a deployment plan
type Step struct {
	Name string
	Kind StepKind

	// Contract is the artifact name for deploy steps. For call steps it is filled
	// in from the target record at execution time.
	Contract string

	// Target names the step whose address a call step invokes
	Target string
	Method string

	Args          []Argument
	Confirmations ConfirmationPolicy
	Value         *big.Int
	GasLimit      uint64

	// Optional steps record a submission failure and let the run continue
	Optional    bool
	Description string
}

// References returns the names of the steps this step depends on, in argument order
func (s Step) References() []string {
	var refs []string
	if s.Kind == StepCall && s.Target != "" {
		refs = append(refs, s.Target)
	}
	for _, arg := range s.Args {
		if arg.Kind == ArgReference {
			refs = append(refs, arg.Name)
		}
	}
	return refs
}

// Plan is a named, ordered list of steps loaded from a plan file
type Plan struct {
	Name   string
	Path   string
	Tags   []string
	Sender string
	Steps  []Step
}

// ChainContext is the shared, read-only context every step of a run executes in
type ChainContext struct {
	Network             string
	ChainID             uint64
	Sender              string
	ConfirmationTimeout time.Duration

	// VerifyCode makes the sequencer check that a stored deployment still has code
	// on chain before reusing it
	VerifyCode bool
}
