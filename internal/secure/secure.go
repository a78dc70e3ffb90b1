// Package secure provides convenience wrappers over the centralized keychain manager.
// It exposes the handful of secret operations the CLI needs (oracle API key and
// database DSN) without making callers deal with manager initialization.
package secure

import (
	"sqlsage/cli/internal/keychain"
)

// SaveOracleAPIKey stores the oracle API key in the OS keychain.
func SaveOracleAPIKey(key string) error {
	manager, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return manager.SaveOracleAPIKey(key)
}

// LoadOracleAPIKey retrieves the oracle API key from the keychain.
func LoadOracleAPIKey() (string, error) {
	manager, err := keychain.GetManager()
	if err != nil {
		return "", err
	}
	return manager.LoadOracleAPIKey()
}

// ClearOracleAPIKey removes the oracle API key from the keychain.
func ClearOracleAPIKey() error {
	manager, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return manager.ClearOracleAPIKey()
}

// SaveDBDSN stores the database DSN in the keychain.
func SaveDBDSN(dsn string) error {
	manager, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return manager.SaveDBDSN(dsn)
}

// LoadDBDSN retrieves the database DSN from the keychain.
func LoadDBDSN() (string, error) {
	manager, err := keychain.GetManager()
	if err != nil {
		return "", err
	}
	return manager.LoadDBDSN()
}

// ClearDB removes DB-related secrets from the keychain.
func ClearDB() error {
	manager, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return manager.ClearDB()
}
