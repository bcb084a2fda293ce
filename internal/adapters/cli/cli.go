// Package cli is the command-line adapter. Every command goes through
// app.ApplicationService; nothing here touches the store directly.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"distribution-backend/internal/app"

	"github.com/spf13/cobra"
)

// Migrator is the schema migration surface the migrate commands need.
type Migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Close() error
}

// Environment lazily builds what commands depend on, so that commands which
// need no database (help, token) never open one.
type Environment struct {
	Service  func(ctx context.Context) (app.ApplicationService, error)
	Migrator func(ctx context.Context) (Migrator, error)

	JWTSecret string
	JWTIssuer string
}

// NewRootCommand assembles the command tree.
func NewRootCommand(env Environment) *cobra.Command {
	root := &cobra.Command{
		Use:   "distro",
		Short: "Goods-issuance and stock management",
		Long: `distro manages the item catalog, customers and goods issuances
(surat jalan) of a distribution business, including the per-issuance profit
split between the three owners and the reserve.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newItemsCommand(env),
		newCustomersCommand(env),
		newIssuanceCommand(env),
		newReportCommand(env),
		newMigrateCommand(env),
		newTokenCommand(env),
	)
	return root
}

// withService resolves the application service before running fn.
func withService(env Environment, fn func(cmd *cobra.Command, svc app.ApplicationService, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if env.Service == nil {
			return fmt.Errorf("application service is not configured")
		}
		svc, err := env.Service(cmd.Context())
		if err != nil {
			return err
		}
		return fn(cmd, svc, args)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
