package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/constants"
	"github.com/julianstephens/habitd/internal/keyring"
	"github.com/julianstephens/habitd/internal/storage/postgres"
)

// minSecretLength bounds the HS256 signing secret
const minSecretLength = 32

type ConfigCmd struct {
	Set    ConfigSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Get    ConfigGetCmd    `cmd:"" help:"Show a stored secret (masked)."`
	Delete ConfigDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
	Status ConfigStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
}

// ConfigSetCmd stores a secret in the OS keyring
type ConfigSetCmd struct {
	Key   string `arg:"" enum:"database-connection,jwt-secret" help:"Secret to set: database-connection or jwt-secret."`
	Value string `arg:"" help:"Secret value."`
}

func (cmd *ConfigSetCmd) Run(ctx *cli.Context) error {
	switch cmd.Key {
	case constants.KeyringDBConnection:
		if err := validateConnectionString(cmd.Value); err != nil {
			return err
		}
	case constants.KeyringJWTSecret:
		if len(cmd.Value) < minSecretLength {
			return fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
		}
	}

	if err := keyring.Set(cmd.Key, cmd.Value); err != nil {
		return err
	}

	fmt.Printf("%s %s stored successfully in OS keyring\n", cli.SuccessStyle.Render("✓"), cmd.Key)
	return nil
}

func validateConnectionString(connStr string) error {
	if !postgres.IsPostgresConnString(connStr) && !strings.Contains(connStr, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(connStr); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			// The keyring is encrypted, so an embedded password is acceptable here
			fmt.Println(cli.WarningStyle.Render("⚠️  Warning: Connection string contains embedded credentials."))
			fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
			return nil
		}
		return fmt.Errorf("invalid connection string: %w", err)
	}
	return nil
}

// ConfigGetCmd prints a stored secret with its sensitive part masked
type ConfigGetCmd struct {
	Key string `arg:"" enum:"database-connection,jwt-secret" help:"Secret to show."`
}

func (cmd *ConfigGetCmd) Run(ctx *cli.Context) error {
	value, err := keyring.Get(cmd.Key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use 'habitd config set %s' to store one", cmd.Key, cmd.Key)
		}
		return fmt.Errorf("failed to retrieve %s from keyring: %w", cmd.Key, err)
	}

	if cmd.Key == constants.KeyringJWTSecret {
		fmt.Println(maskSecret(value))
		return nil
	}
	fmt.Println(maskPassword(value))
	return nil
}

// ConfigDeleteCmd removes a secret from the OS keyring
type ConfigDeleteCmd struct {
	Key string `arg:"" enum:"database-connection,jwt-secret" help:"Secret to delete."`
}

func (cmd *ConfigDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.Delete(cmd.Key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", cmd.Key)
		}
		return err
	}
	fmt.Printf("%s %s deleted from OS keyring\n", cli.SuccessStyle.Render("✓"), cmd.Key)
	return nil
}

// ConfigStatusCmd checks the availability of the OS keyring
type ConfigStatusCmd struct{}

func (cmd *ConfigStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}

	fmt.Println("✓ OS keyring is available")
	for _, key := range keyring.Keys {
		if _, err := keyring.Get(key); err == nil {
			fmt.Printf("✓ %s is stored in keyring\n", key)
		} else if errors.Is(err, keyring.ErrNotFound) {
			fmt.Printf("ℹ No %s stored in keyring\n", key)
		}
	}
	return nil
}

func maskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + strings.Repeat("*", 8)
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if postgres.IsPostgresConnString(connStr) {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			// The last @ separates user info from host
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}

	return connStr
}
