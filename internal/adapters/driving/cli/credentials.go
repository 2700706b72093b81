package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage provider API credentials",
	Long: `Stores provider tokens in ~/.shipforge/credentials.toml.
The environment is always consulted as a fallback, so CI can inject
tokens without touching the store.`,
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Store a credential",
	Long: `Stores a credential value. When the value is omitted it is
read from the terminal without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCredentialsSet,
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List credential keys and whether each is configured",
	RunE:  runCredentialsList,
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a credential from the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if credentialsService == nil {
			return errors.New("credentials service not configured")
		}
		key := strings.ToUpper(args[0])
		if err := credentialsService.Delete(context.Background(), key); err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
		cmd.Printf("%s removed\n", key)
		return nil
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsListCmd)
	credentialsCmd.AddCommand(credentialsDeleteCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func runCredentialsSet(cmd *cobra.Command, args []string) error {
	if credentialsService == nil {
		return errors.New("credentials service not configured")
	}

	key := strings.ToUpper(args[0])
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("Value for %s: ", key)
		data, err := term.ReadPassword(int(os.Stdin.Fd()))
		cmd.Println()
		if err != nil {
			return fmt.Errorf("reading value: %w", err)
		}
		value = strings.TrimSpace(string(data))
	}
	if value == "" {
		return fmt.Errorf("empty value for %s: %w", key, domain.ErrInvalidInput)
	}

	if err := credentialsService.Set(context.Background(), key, value); err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	cmd.Printf("%s stored\n", key)
	return nil
}

func runCredentialsList(cmd *cobra.Command, _ []string) error {
	if credentialsService == nil {
		return errors.New("credentials service not configured")
	}

	creds, err := credentialsService.ResolveAll(context.Background())
	if err != nil {
		return fmt.Errorf("reading credentials: %w", err)
	}

	groups := domain.RequiredCredentials()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd.Printf("%s:\n", name)
		for _, key := range groups[name] {
			state := "not set"
			if creds.Has(key) {
				state = "configured"
			}
			cmd.Printf("  %-22s %s\n", key, state)
		}
	}
	return nil
}
