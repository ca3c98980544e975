package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/budeshi/budeshi/internal/cli/formatter"
	"github.com/budeshi/budeshi/internal/export"
	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/budeshi/budeshi/internal/llm"
	"github.com/budeshi/budeshi/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newChatCmd(state *cmdState) *cobra.Command {
	var resume string
	var ephemeral, lineMode bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a conversation about the projects",
		Long: `Start an interactive conversation. Turns are saved with the sqlite
backend; pass --resume with a conversation ID to continue one.

Commands inside the chat:
  /clear           start over with a fresh conversation
  /export [file]   save the transcript as plain text
  /quit            leave`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := state.app
			ctx := cmd.Context()

			opts := service.ChatOptions{
				ConversationID: resume,
				Observer:       app.UseCases,
				Logger:         app.Logger,
			}
			if !ephemeral {
				opts.Turns = app.Turns
			}
			session, err := service.NewChatSession(ctx, app.Resolver, opts)
			if err != nil {
				return err
			}

			path := app.Resolver.SelectPath(ctx)
			if app.interactive() && !lineMode {
				m := newChatModel(ctx, session, path)
				_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
				if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
					return nil
				}
				return err
			}
			return runLineChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session, path)
		},
	}
	cmd.Flags().StringVar(&resume, "resume", "", "conversation ID to continue")
	cmd.Flags().BoolVar(&ephemeral, "no-save", false, "keep the conversation in memory only")
	cmd.Flags().BoolVar(&lineMode, "plain", false, "read messages line by line even on a terminal")
	return cmd
}

// runLineChat reads one message per line until EOF or /quit.
func runLineChat(ctx context.Context, in io.Reader, out io.Writer, session *service.ChatSession, path intelligence.Path) error {
	fmt.Fprintln(out, formatter.FormatChatBanner(string(path)))
	fmt.Fprintln(out, formatter.Dim("Conversation "+session.ConversationID()))
	for _, t := range session.Turns() {
		fmt.Fprint(out, formatter.FormatTurn(t))
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, msg, err := runSlashCommand(ctx, session, line, time.Now())
			if err != nil {
				fmt.Fprintln(out, formatter.StyleRed.Render(err.Error()))
			} else if msg != "" {
				fmt.Fprintln(out, formatter.Dim(msg))
			}
			if quit {
				return nil
			}
			continue
		}

		reply, err := session.Send(ctx, line)
		if reply != nil {
			fmt.Fprint(out, formatter.FormatTurn(reply.Turn))
		}
		if err != nil {
			fmt.Fprintln(out, formatter.StyleRed.Render(resolutionNotice(err)))
		}
	}
	return scanner.Err()
}

// runSlashCommand handles /clear, /export and /quit. It reports whether the
// chat should end and a status line to show.
func runSlashCommand(ctx context.Context, session *service.ChatSession, line string, now time.Time) (quit bool, msg string, err error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, "", nil
	case "/clear":
		if err := session.Reset(ctx); err != nil {
			return false, "", err
		}
		return false, "Conversation cleared.", nil
	case "/export":
		target := export.TranscriptFilename(now)
		if len(fields) > 1 {
			target = fields[1]
		}
		if err := os.WriteFile(target, []byte(session.Transcript(time.Local)), 0o644); err != nil {
			return false, "", fmt.Errorf("exporting transcript: %w", err)
		}
		abs, _ := filepath.Abs(target)
		return false, "Transcript saved to " + abs, nil
	}
	return false, "", fmt.Errorf("unknown command %s (try /clear, /export or /quit)", fields[0])
}

// resolutionNotice is the one-line notification for a failed resolution.
func resolutionNotice(err error) string {
	switch {
	case errors.Is(err, service.ErrBusy):
		return "Still working on the previous message."
	case errors.Is(err, llm.ErrMissingCredential):
		return "No API key configured. Run \"budeshi key set\" or use --mode local."
	case errors.Is(err, intelligence.ErrEmptyInput):
		return "Type a message first."
	}
	return fmt.Sprintf("The assistant could not be reached (%s).", llm.ErrorCode(err))
}
