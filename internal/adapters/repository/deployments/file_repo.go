package deployments

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

const (
	TrebDir         = ".treb"
	DeploymentsFile = "deployments.json"
)

// FileRepository stores deployments in .treb/deployments.json, keyed by
// "<network>/<step name>"
type FileRepository struct {
	dataDir     string
	mu          sync.RWMutex
	deployments map[string]*models.Deployment
}

// NewFileRepository creates a repository rooted at the project directory
func NewFileRepository(rootDir string) (*FileRepository, error) {
	return newFileRepository(filepath.Join(rootDir, TrebDir))
}

// NewFileRepositoryFromConfig creates a repository in the configured data directory
func NewFileRepositoryFromConfig(cfg *config.RuntimeConfig) (*FileRepository, error) {
	if cfg.DataDir != "" {
		return newFileRepository(cfg.DataDir)
	}
	return NewFileRepository(cfg.ProjectRoot)
}

func newFileRepository(dataDir string) (*FileRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", dataDir, err)
	}

	m := &FileRepository{
		dataDir:     dataDir,
		deployments: make(map[string]*models.Deployment),
	}
	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to load deployments: %w", err)
	}
	return m, nil
}

// load reads the deployments file
func (m *FileRepository) load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &m.deployments); err != nil {
		return fmt.Errorf("invalid %s: %w", DeploymentsFile, err)
	}
	if m.deployments == nil {
		m.deployments = make(map[string]*models.Deployment)
	}
	return nil
}

// commit writes next to the deployments file and makes it the in-memory state
// once the file is in place. Caller must hold the write lock.
func (m *FileRepository) commit(next map[string]*models.Deployment) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file first
	tmpPath := m.path() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	// Atomic rename
	if err := os.Rename(tmpPath, m.path()); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	m.deployments = next
	return nil
}

func (m *FileRepository) path() string {
	return filepath.Join(m.dataDir, DeploymentsFile)
}

func key(network, name string) string {
	return network + "/" + name
}

// Load returns the stored deployment of a step on a network
func (m *FileRepository) Load(ctx context.Context, network, name string) (*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	deployment, ok := m.deployments[key(network, name)]
	if !ok {
		return nil, fmt.Errorf("deployment %s: %w", key(network, name), domain.ErrNotFound)
	}
	cp := *deployment
	return &cp, nil
}

// Save stores a deployment, replacing any previous one for the same step
func (m *FileRepository) Save(ctx context.Context, deployment *models.Deployment) error {
	if deployment.Network == "" || deployment.Name == "" {
		return fmt.Errorf("deployment needs a network and a name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := maps.Clone(m.deployments)
	cp := *deployment
	next[deployment.ID()] = &cp
	return m.commit(next)
}

// List returns the deployments of a network sorted by name, or of every network
// when network is empty
func (m *FileRepository) List(ctx context.Context, network string) ([]*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Deployment
	for _, d := range m.deployments {
		if network != "" && d.Network != network {
			continue
		}
		cp := *d
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID() < result[j].ID()
	})
	return result, nil
}

// Reset removes every deployment of a network and returns how many were removed
func (m *FileRepository) Reset(ctx context.Context, network string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := maps.Clone(m.deployments)
	removed := 0
	for id, d := range next {
		if d.Network == network {
			delete(next, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	if err := m.commit(next); err != nil {
		return 0, fmt.Errorf("failed to save deployments: %w", err)
	}
	return removed, nil
}

// Ensure the repository implements the interface
var _ usecase.DeploymentRepository = (*FileRepository)(nil)
