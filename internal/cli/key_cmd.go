package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/budeshi/budeshi/internal/llm"
	"github.com/spf13/cobra"
)

func newKeyCmd(state *cmdState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the completion service API key",
		Long: `Manage the API key used for the external resolution path. A key in
BUDESHI_LLM_API_KEY or llm.api_key takes precedence over the stored one.`,
	}
	cmd.AddCommand(newKeySetCmd(state), newKeyClearCmd(state), newKeyStatusCmd(state))
	return cmd
}

func newKeySetCmd(state *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store an API key",
		Long:  "Store an API key. On a terminal the key is prompted for; otherwise it is read from the first line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := state.app
			stored, err := requireStoredKey(app)
			if err != nil {
				return err
			}

			var key string
			if app.interactive() {
				if err := apiKeyForm(&key).RunWithContext(cmd.Context()); err != nil {
					return err
				}
			} else {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if scanner.Scan() {
					key = scanner.Text()
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("reading key: %w", err)
				}
			}

			key = strings.TrimSpace(key)
			if key == "" {
				return errors.New("no key given")
			}
			if err := stored.Set(cmd.Context(), key); err != nil {
				return err
			}
			printf(cmd, "Stored API key %s.\n", llm.MaskKey(key))
			return nil
		},
	}
}

func newKeyClearCmd(state *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := requireStoredKey(state.app)
			if err != nil {
				return err
			}
			if err := stored.Clear(cmd.Context()); err != nil {
				return err
			}
			printf(cmd, "Stored API key removed.\n")
			return nil
		},
	}
}

func newKeyStatusCmd(state *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a key is configured and which path questions take",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := state.app
			ctx := cmd.Context()

			key := ""
			if app.Credentials != nil {
				k, err := app.Credentials.APIKey(ctx)
				if err != nil && !errors.Is(err, llm.ErrMissingCredential) {
					return err
				}
				key = k
			}
			if key == "" {
				printf(cmd, "API key: not configured\n")
			} else {
				printf(cmd, "API key: %s\n", llm.MaskKey(key))
			}
			printf(cmd, "Mode:    %s\n", app.Config.Resolution.Mode)
			printf(cmd, "Path:    %s\n", app.Resolver.SelectPath(ctx))
			return nil
		},
	}
}
