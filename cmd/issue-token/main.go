// Package main implements issue-token, a development helper that mints an
// access token accepted by the tasks API server. It reads the same
// configuration as the server, so the signing secret always matches.
//
// Usage:
//
//	issue-token [--user <uuid>] [--config <file>]
//
// Without --user a fresh user ID is generated. The token is written to
// stdout and the user ID to stderr. Only the auth settings matter: the
// database driver is forced to memory unless --database-driver is given, so
// no database URL is needed to mint a token.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "issue-token: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := pflag.NewFlagSet("issue-token", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	config.RegisterFlags(flags)
	user := flags.String("user", "", "user ID to issue the token for (default: a new random ID)")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	userID := uuid.New()
	if *user != "" {
		parsed, err := uuid.Parse(*user)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		if parsed == uuid.Nil {
			return errors.New("invalid --user: nil UUID")
		}
		userID = parsed
	}

	if !flags.Changed("database-driver") {
		if err := flags.Set("database-driver", config.DriverMemory); err != nil {
			return err
		}
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	token, err := jwtService.GenerateToken(context.Background(), userID)
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "user: %s\n", userID)
	fmt.Fprintln(stdout, token)
	return nil
}
