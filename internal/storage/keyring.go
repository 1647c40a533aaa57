package storage

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/zalando/go-keyring"
)

// KeyringBest keeps the best score in the OS credential store, under the
// given service and key.
type KeyringBest struct {
	service string
	key     string
}

// NewKeyring returns a keyring-backed best-score store.
func NewKeyring(service, key string) *KeyringBest {
	return &KeyringBest{service: service, key: key}
}

// Get returns the stored best score, or 0 if none was saved yet.
func (k *KeyringBest) Get() (int, error) {
	raw, err := keyring.Get(k.service, k.key)
	if errors.Is(err, keyring.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: keyring read: %w", err)
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("storage: keyring value %q: %w", raw, err)
	}
	return v, nil
}

// keyringMu serializes read-compare-write cycles of every KeyringBest in
// the process. The keychain itself has no compare-and-set.
var keyringMu sync.Mutex

// Set stores score unless the keychain already holds a higher one.
// An unreadable stored value is overwritten.
func (k *KeyringBest) Set(score int) error {
	keyringMu.Lock()
	defer keyringMu.Unlock()

	current, err := k.Get()
	if err == nil && current >= score {
		return nil
	}
	if err := keyring.Set(k.service, k.key, strconv.Itoa(score)); err != nil {
		return fmt.Errorf("storage: keyring write: %w", err)
	}
	return nil
}

// Reset deletes the stored value.
func (k *KeyringBest) Reset() error {
	err := keyring.Delete(k.service, k.key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("storage: keyring delete: %w", err)
	}
	return nil
}
