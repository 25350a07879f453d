package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"multichat/backend/internal/model"
)

var (
	askChatID    int64
	askPlatforms string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask every enabled backend one question",
	Long: `Ask a question in a new chat, or in a saved one with --chat, and print each
backend's answer once all of them are done. The round is saved like any
other chat.

Examples:
  multichat ask "What is 2+2?"
  multichat ask --chat 3 "And times three?"
  multichat ask --platforms on_device "Summarize Go channels"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Int64VarP(&askChatID, "chat", "c", 0, "continue a saved chat")
	askCmd.Flags().StringVar(&askPlatforms, "platforms", "", "comma separated backends for a new chat (default: enabled ones)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	platforms, err := model.ParseAPITypes(askPlatforms)
	if err != nil {
		return err
	}

	session, err := application.Sessions.Open(ctx, askChatID, platforms)
	if err != nil {
		return err
	}
	defer func() { _ = application.Sessions.Close(session.ID()) }()

	before, err := session.Snapshot(ctx)
	if err != nil {
		return err
	}
	updates, err := session.Subscribe(ctx)
	if err != nil {
		return err
	}
	if err := session.Ask(ctx, strings.Join(args, " ")); err != nil {
		return err
	}

	var final model.SessionSnapshot
	finished := false
	for snap := range updates {
		if snap.Idle && len(snap.Messages) > len(before.Messages) {
			final, finished = snap, true
			break
		}
	}
	if !finished {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fmt.Errorf("session closed before the answers arrived")
	}

	out := cmd.OutOrStdout()
	for _, m := range final.Messages[len(before.Messages):] {
		if m.IsUser() {
			continue
		}
		fmt.Fprintf(out, "[%s]\n%s\n\n", m.Platform, m.Content)
	}
	fmt.Fprintf(out, "Saved as chat %d (%q)\n", final.Room.ID, final.Room.Title)
	if final.LastError != "" {
		return fmt.Errorf("saving chat: %s", final.LastError)
	}
	return nil
}
