package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// Repository discovers compiled contracts in the project's artifact directories.
// Foundry (out/<File>.sol/<Name>.json) and Hardhat
// (artifacts/contracts/<File>.sol/<Name>.json) layouts are both understood.
type Repository struct {
	projectRoot  string
	artifactDirs []string
	contracts    map[string][]*models.Contract // key: contract name
	log          *slog.Logger
	mu           sync.RWMutex
	indexed      bool
}

// NewRepository creates a new contract repository
func NewRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	return &Repository{
		projectRoot:  cfg.ProjectRoot,
		artifactDirs: cfg.ArtifactDirs(),
		contracts:    make(map[string][]*models.Contract),
		log:          log,
	}
}

// Index discovers all artifacts
func (i *Repository) Index() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.indexed {
		return nil
	}
	i.contracts = make(map[string][]*models.Contract)

	for _, dir := range i.artifactDirs {
		root := dir
		if !filepath.IsAbs(root) {
			root = filepath.Join(i.projectRoot, dir)
		}
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}

		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if info.Name() == "build-info" {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
				return nil
			}
			return i.processArtifact(path)
		})
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", dir, err)
		}
	}

	i.indexed = true
	return nil
}

// processArtifact indexes a single artifact file. Files that are not contract
// artifacts are skipped.
func (i *Repository) processArtifact(artifactPath string) error {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return err
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil
	}
	if len(artifact.ABI) == 0 || !artifact.Bytecode.HasCode() {
		return nil
	}

	name := artifact.ContractName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(artifactPath), ".json")
	}

	relArtifactPath, _ := filepath.Rel(i.projectRoot, artifactPath)
	i.log.Debug("indexed artifact", "contract", name, "path", relArtifactPath)

	i.contracts[name] = append(i.contracts[name], &models.Contract{
		Name:         name,
		ArtifactPath: relArtifactPath,
		Artifact:     &artifact,
	})
	return nil
}

// GetContract returns the artifact of the named contract. The name may be
// qualified with its source file ("Balloons.sol:Balloons") when it is ambiguous.
func (i *Repository) GetContract(ctx context.Context, name string) (*models.Contract, error) {
	if err := i.Index(); err != nil {
		return nil, err
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	source, contractName := "", name
	if idx := strings.LastIndex(name, ":"); idx != -1 {
		source, contractName = name[:idx], name[idx+1:]
	}

	candidates := i.contracts[contractName]
	if source != "" {
		var filtered []*models.Contract
		for _, c := range candidates {
			if strings.Contains(filepath.ToSlash(c.ArtifactPath), source+"/") {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	switch len(candidates) {
	case 0:
		if suggestion := i.suggest(contractName); suggestion != "" {
			return nil, fmt.Errorf("%w: %s (did you mean %s?)", domain.ErrArtifactNotFound, name, suggestion)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
	case 1:
		return candidates[0], nil
	default:
		paths := make([]string, len(candidates))
		for j, c := range candidates {
			paths[j] = c.ArtifactPath
		}
		sort.Strings(paths)
		return nil, fmt.Errorf("multiple artifacts named %s, qualify it as <File.sol>:%s: %s",
			contractName, contractName, strings.Join(paths, ", "))
	}
}

// ParseABI returns the parsed ABI of a contract
func ParseABI(contract *models.Contract) (*abi.ABI, error) {
	if contract.Artifact == nil {
		return nil, fmt.Errorf("contract %s has no artifact", contract.Name)
	}
	parsed, err := abi.JSON(strings.NewReader(string(contract.Artifact.ABI)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI of %s: %w", contract.Name, err)
	}
	return &parsed, nil
}

// suggest returns the closest indexed contract name
func (i *Repository) suggest(name string) string {
	names := make([]string, 0, len(i.contracts))
	for n := range i.contracts {
		names = append(names, n)
	}
	sort.Strings(names)
	if matches := fuzzy.Find(name, names); len(matches) > 0 {
		return matches[0].Str
	}
	return ""
}

// Ensure the adapter implements the interface
var _ usecase.ContractRepository = (*Repository)(nil)
