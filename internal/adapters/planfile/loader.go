package planfile

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
	"gopkg.in/yaml.v3"
)

// DefaultPlanFile is loaded when no plan path is given
const DefaultPlanFile = "plan.yaml"

// planFile is the on-disk layout of a plan
type planFile struct {
	Name   string     `yaml:"name"`
	Tags   []string   `yaml:"tags,omitempty"`
	Sender string     `yaml:"sender,omitempty"`
	Steps  []stepFile `yaml:"steps"`
}

type stepFile struct {
	Name          string      `yaml:"name"`
	Deploy        string      `yaml:"deploy,omitempty"`
	Call          string      `yaml:"call,omitempty"`
	Method        string      `yaml:"method,omitempty"`
	Args          []yaml.Node `yaml:"args,omitempty"`
	Value         yaml.Node   `yaml:"value,omitempty"`
	GasLimit      uint64      `yaml:"gas_limit,omitempty"`
	Confirmations yaml.Node   `yaml:"confirmations,omitempty"`
	Optional      bool        `yaml:"optional,omitempty"`
	Description   string      `yaml:"description,omitempty"`
}

type confirmationsFile struct {
	Default uint64            `yaml:"default"`
	Chains  map[uint64]uint64 `yaml:"chains"`
}

// Loader reads YAML plan files relative to the project root
type Loader struct {
	projectRoot string
}

// NewLoader creates a new plan loader
func NewLoader(cfg *config.RuntimeConfig) *Loader {
	return &Loader{projectRoot: cfg.ProjectRoot}
}

// LoadPlan reads and decodes the plan at path. Structural checks such as forward
// references are left to plan validation.
func (l *Loader) LoadPlan(_ context.Context, path string) (*models.Plan, error) {
	if path == "" {
		path = DefaultPlanFile
	}
	if !filepath.IsAbs(path) && l.projectRoot != "" {
		path = filepath.Join(l.projectRoot, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	plan, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	plan.Path = path
	if plan.Name == "" {
		plan.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return plan, nil
}

// Parse decodes a YAML plan document
func Parse(data []byte) (*models.Plan, error) {
	var file planFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	plan := &models.Plan{
		Name:   file.Name,
		Tags:   file.Tags,
		Sender: file.Sender,
		Steps:  make([]models.Step, 0, len(file.Steps)),
	}
	for i, sf := range file.Steps {
		step, err := sf.toStep()
		if err != nil {
			label := sf.Name
			if label == "" {
				label = fmt.Sprintf("#%d", i+1)
			}
			return nil, fmt.Errorf("step %s: %w", label, err)
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan, nil
}

func (sf stepFile) toStep() (models.Step, error) {
	step := models.Step{
		Name:        sf.Name,
		GasLimit:    sf.GasLimit,
		Optional:    sf.Optional,
		Description: sf.Description,
	}

	switch {
	case sf.Deploy != "" && sf.Call != "":
		return step, fmt.Errorf("set either deploy or call, not both")
	case sf.Deploy != "":
		step.Kind = models.StepDeploy
		step.Contract = sf.Deploy
		if sf.Method != "" {
			return step, fmt.Errorf("deploy steps take no method")
		}
	case sf.Call != "":
		step.Kind = models.StepCall
		step.Target = sf.Call
		step.Method = sf.Method
	default:
		return step, fmt.Errorf("set deploy or call")
	}

	for i := range sf.Args {
		arg, err := decodeArgument(&sf.Args[i])
		if err != nil {
			return step, fmt.Errorf("argument %d: %w", i+1, err)
		}
		step.Args = append(step.Args, arg)
	}

	if !sf.Value.IsZero() {
		value, err := decodeAmount(&sf.Value)
		if err != nil {
			return step, fmt.Errorf("value: %w", err)
		}
		step.Value = value
	}

	policy, err := decodeConfirmations(&sf.Confirmations)
	if err != nil {
		return step, fmt.Errorf("confirmations: %w", err)
	}
	step.Confirmations = policy

	return step, nil
}

func decodeArgument(node *yaml.Node) (models.Argument, error) {
	if node.Kind != yaml.MappingNode {
		v, err := decodeLiteral(node)
		if err != nil {
			return models.Argument{}, err
		}
		return models.Literal(v), nil
	}

	key, value, err := singleEntry(node)
	if err != nil {
		return models.Argument{}, err
	}
	switch key {
	case "ref":
		return models.Ref(value), nil
	case "account":
		return models.Account(value), nil
	case "ether", "gwei", "wei":
		amount, err := models.ScaleAmount(value, key)
		if err != nil {
			return models.Argument{}, err
		}
		return models.Literal(amount), nil
	default:
		return models.Argument{}, fmt.Errorf("line %d: unknown argument form %q", node.Line, key)
	}
}

// decodeLiteral turns a scalar or sequence node into a value the chain client can
// coerce. Integers become *big.Int so large values survive.
func decodeLiteral(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!int":
			n, ok := new(big.Int).SetString(strings.ReplaceAll(node.Value, "_", ""), 0)
			if !ok {
				return nil, fmt.Errorf("line %d: invalid integer %q", node.Line, node.Value)
			}
			return n, nil
		case "!!bool":
			return strconv.ParseBool(node.Value)
		case "!!null":
			return nil, fmt.Errorf("line %d: empty argument", node.Line)
		default:
			return node.Value, nil
		}
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			if child.Kind == yaml.MappingNode {
				return nil, fmt.Errorf("line %d: references are not supported inside arrays", child.Line)
			}
			v, err := decodeLiteral(child)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported argument", node.Line)
	}
}

// decodeAmount accepts "0.5ether", 1000 or {ether: "0.5"}
func decodeAmount(node *yaml.Node) (*big.Int, error) {
	if node.Kind == yaml.MappingNode {
		unit, number, err := singleEntry(node)
		if err != nil {
			return nil, err
		}
		return models.ScaleAmount(number, unit)
	}
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: expected an amount", node.Line)
	}
	return models.ParseAmount(node.Value)
}

func decodeConfirmations(node *yaml.Node) (models.ConfirmationPolicy, error) {
	var policy models.ConfirmationPolicy
	switch node.Kind {
	case 0:
		return policy, nil
	case yaml.ScalarNode:
		err := node.Decode(&policy.Count)
		return policy, err
	case yaml.MappingNode:
		var cf confirmationsFile
		if err := node.Decode(&cf); err != nil {
			return policy, err
		}
		policy.Count = cf.Default
		policy.ByChain = cf.Chains
		return policy, nil
	default:
		return policy, fmt.Errorf("line %d: expected a count or {default, chains}", node.Line)
	}
}

func singleEntry(node *yaml.Node) (string, string, error) {
	if len(node.Content) != 2 {
		return "", "", fmt.Errorf("line %d: expected a single key", node.Line)
	}
	key, value := node.Content[0], node.Content[1]
	if value.Kind != yaml.ScalarNode {
		return "", "", fmt.Errorf("line %d: %s expects a scalar", value.Line, key.Value)
	}
	return key.Value, value.Value, nil
}

var _ usecase.PlanLoader = (*Loader)(nil)
