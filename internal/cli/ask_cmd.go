package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/budeshi/budeshi/internal/cli/formatter"
	"github.com/budeshi/budeshi/internal/contract"
	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/budeshi/budeshi/internal/llm"
	"github.com/spf13/cobra"
)

func newAskCmd(state *cmdState) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   `ask "<question>"`,
		Short: "Answer a single question about the projects",
		Long: `Answer one question without keeping a conversation. Questions are
resolved locally from the project data, or by the remote completion service
when an API key is configured (see "budeshi key").`,
		Example: `  budeshi ask "What is the budget for Abuja Light Rail Project?"
  budeshi ask --mode local "Which projects are delayed?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := state.app
			ctx := cmd.Context()
			question := strings.Join(args, " ")

			path := app.Resolver.SelectPath(ctx)
			var stop func()
			if path == intelligence.PathExternal && app.interactive() && !asJSON {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Thinking...")
			}
			reply, err := app.Resolver.Respond(ctx, question, nil)
			if stop != nil {
				stop()
			}
			if reply == nil {
				if errors.Is(err, intelligence.ErrEmptyInput) {
					return errors.New("question must not be blank")
				}
				return err
			}

			if asJSON {
				resp := contract.ChatResponse{
					UserTurn: contract.FromTurn(reply.UserTurn),
					Reply:    contract.FromTurn(reply.Turn),
					Path:     string(reply.Path),
					Intent:   string(reply.Intent),
					Error:    llm.ErrorCode(err),
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(resp); encErr != nil {
					return encErr
				}
			} else {
				printf(cmd, "%s\n", reply.Turn.Content)
			}

			if err != nil {
				return fmt.Errorf("resolving question: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reply as JSON")
	return cmd
}
