package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"multichat/backend/internal/service"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export <chat-id>",
	Short: "Export a chat to Markdown",
	Long: `Write a saved chat as a Markdown file named export_<title>_<millis>.md.

Examples:
  multichat export 3
  multichat export 3 --out ./exports`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "output directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	chatID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q", args[0])
	}

	chat, err := application.Chats.GetFullChat(cmd.Context(), chatID)
	if err != nil {
		return err
	}

	filename, markdown := service.ExportChat(chat.ChatRoom, chat.Messages, time.Now())

	if err := os.MkdirAll(exportDir, 0750); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(exportDir, strings.ReplaceAll(filename, string(os.PathSeparator), "_"))
	if err := os.WriteFile(path, []byte(markdown), 0600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}
