package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/constants"
	"github.com/julianstephens/habitd/internal/httpapi"
	"github.com/julianstephens/habitd/internal/keyring"
	"github.com/julianstephens/habitd/internal/lockfile"
	"github.com/julianstephens/habitd/internal/logger"
)

type ServeCmd struct {
	Addr  string  `help:"Listen address." env:"HABITD_ADDR" default:"${addr}"`
	Rate  float64 `help:"Requests per second allowed per owner." default:"10"`
	Burst int     `help:"Burst size per owner." default:"20"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	secret, err := resolveJWTSecret()
	if err != nil {
		return err
	}

	dir := ctx.ConfigDir()
	if err := lockfile.Write(dir, c.Addr); err != nil {
		return err
	}
	defer func() {
		if err := lockfile.Remove(dir); err != nil {
			logger.Warn("Failed to remove server lockfile", "error", err)
		}
	}()

	ctx.PerformAutomaticBackup()

	srv := httpapi.New(httpapi.Config{
		Habits:            ctx.Habits,
		Interests:         ctx.Interests,
		Counters:          ctx.Counters,
		JWTSecret:         secret,
		RequestsPerSecond: c.Rate,
		Burst:             c.Burst,
	})

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("habitd API listening on http://%s (Ctrl+C to stop)\n", c.Addr)
	return srv.ListenAndServe(sigCtx, c.Addr)
}

type TokenCmd struct {
	Owner string        `arg:"" optional:"" help:"Owner to issue the token for. Defaults to the active owner."`
	TTL   time.Duration `help:"Token lifetime." default:"720h"`
}

func (c *TokenCmd) Run(ctx *cli.Context) error {
	secret, err := resolveJWTSecret()
	if err != nil {
		return err
	}
	owner := c.Owner
	if owner == "" {
		owner = ctx.Owner
	}
	token, err := httpapi.MakeJWT(owner, secret, c.TTL)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Println(token)
	return nil
}

// resolveJWTSecret reads the signing secret from the environment, then the keyring
func resolveJWTSecret() (string, error) {
	secret, err := keyring.Resolve(constants.KeyringJWTSecret, os.Getenv(constants.EnvJWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to read jwt secret: %w", err)
	}
	if secret == "" {
		return "", fmt.Errorf("no jwt secret configured, set %s or run 'habitd config set jwt-secret <value>'", constants.EnvJWTSecret)
	}
	if len(secret) < minSecretLength {
		return "", fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	return secret, nil
}
