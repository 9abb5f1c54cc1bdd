package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitd/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested key
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	// ErrUnknownKey is returned for keys habitd does not manage
	ErrUnknownKey = errors.New("unknown keyring key")
)

// Keys lists the secrets habitd keeps in the OS keyring
var Keys = []string{constants.KeyringDBConnection, constants.KeyringJWTSecret}

func validKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Get retrieves a secret from the OS keyring.
// Returns ErrNotFound if nothing is stored.
func Get(key string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	value, err := keyring.Get(constants.AppName, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Set stores a secret in the OS keyring
func Set(key, value string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if value == "" {
		return fmt.Errorf("%s cannot be empty", key)
	}
	if err := keyring.Set(constants.AppName, key, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", key, err)
	}
	return nil
}

// Delete removes a secret from the OS keyring
func Delete(key string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := keyring.Delete(constants.AppName, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}

// Resolve returns the environment value when set, otherwise the keyring value.
// A missing keyring entry yields an empty string and no error.
func Resolve(key string, envValue string) (string, error) {
	if envValue != "" {
		return envValue, nil
	}
	value, err := Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return value, err
}

// IsAvailable checks if the OS keyring is available on the current system.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
