package senders

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// account is a resolved sender. Address-only senders have no key and can be used
// as arguments but not to sign.
type account struct {
	name    string
	address common.Address
	key     *ecdsa.PrivateKey
}

// Manager resolves the named senders configured in foundry.toml into accounts
type Manager struct {
	accounts map[string]*account
	log      *slog.Logger
}

// NewManager creates a sender manager from the runtime configuration
func NewManager(cfg *config.RuntimeConfig, log *slog.Logger) (*Manager, error) {
	m := &Manager{
		accounts: make(map[string]*account),
		log:      log,
	}
	if err := m.LoadConfigs(cfg.Senders()); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadConfigs replaces the configured senders
func (m *Manager) LoadConfigs(configs map[string]config.SenderConfig) error {
	accounts := make(map[string]*account, len(configs))
	for name, sender := range configs {
		acc, err := resolve(name, sender)
		if err != nil {
			return err
		}
		accounts[name] = acc
	}
	m.accounts = accounts
	return nil
}

func resolve(name string, sender config.SenderConfig) (*account, error) {
	if err := ValidateSender(sender); err != nil {
		return nil, fmt.Errorf("sender %s: %w", name, err)
	}

	switch sender.Type {
	case config.SenderTypePrivateKey:
		key, err := crypto.HexToECDSA(strings.TrimPrefix(sender.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("sender %s: invalid private key: %w", name, err)
		}
		address := crypto.PubkeyToAddress(key.PublicKey)
		if sender.Address != "" && !strings.EqualFold(sender.Address, address.Hex()) {
			return nil, fmt.Errorf("sender %s: address %s does not match private key (%s)", name, sender.Address, address.Hex())
		}
		return &account{name: name, address: address, key: key}, nil
	default:
		return &account{name: name, address: common.HexToAddress(sender.Address)}, nil
	}
}

// ValidateSender validates a sender configuration
func ValidateSender(sender config.SenderConfig) error {
	switch sender.Type {
	case config.SenderTypePrivateKey:
		if sender.PrivateKey == "" {
			return fmt.Errorf("private key is required for private_key sender")
		}
		if !isValidPrivateKey(sender.PrivateKey) {
			return fmt.Errorf("invalid private key format")
		}
	case config.SenderTypeAddress:
		if !common.IsHexAddress(sender.Address) {
			return fmt.Errorf("%w: %q", domain.ErrInvalidAddress, sender.Address)
		}
	default:
		return fmt.Errorf("unsupported sender type: %s", sender.Type)
	}
	return nil
}

func isValidPrivateKey(key string) bool {
	key = strings.TrimPrefix(key, "0x")
	if len(key) != 64 {
		return false
	}
	return lo.EveryBy([]byte(key), func(c byte) bool {
		return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	})
}

// GetNamedAccounts returns the address of every configured sender by name
func (m *Manager) GetNamedAccounts(ctx context.Context) (map[string]string, error) {
	return lo.MapValues(m.accounts, func(acc *account, _ string) string {
		return acc.address.Hex()
	}), nil
}

// Names returns the configured sender names, sorted
func (m *Manager) Names() []string {
	names := lo.Keys(m.accounts)
	sort.Strings(names)
	return names
}

// PrivateKey returns the signing key for address
func (m *Manager) PrivateKey(address string) (*ecdsa.PrivateKey, error) {
	acc, ok := lo.Find(lo.Values(m.accounts), func(acc *account) bool {
		return strings.EqualFold(acc.address.Hex(), address)
	})
	if !ok {
		return nil, fmt.Errorf("%w: no sender configured for %s", domain.ErrUnknownAccount, address)
	}
	if acc.key == nil {
		return nil, fmt.Errorf("sender %s (%s) has no private key and cannot sign", acc.name, address)
	}
	return acc.key, nil
}

// Ensure the manager implements the interface
var _ usecase.AccountProvider = (*Manager)(nil)
