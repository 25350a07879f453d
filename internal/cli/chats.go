package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"multichat/backend/internal/model"
)

var (
	chatsDelete []int64
	chatsShow   int64
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List, show or delete saved chats",
	Long: `List saved chats, most recently updated first.

Examples:
  multichat chats
  multichat chats --show 3
  multichat chats --delete 3,4`,
	Args: cobra.NoArgs,
	RunE: runChats,
}

func init() {
	chatsCmd.Flags().Int64SliceVar(&chatsDelete, "delete", nil, "delete these chats and their messages")
	chatsCmd.Flags().Int64Var(&chatsShow, "show", 0, "print one chat's transcript (ignored with --delete)")
}

func runChats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(chatsDelete) > 0 {
		if err := application.Chats.DeleteChats(ctx, chatsDelete); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d chat(s).\n", len(chatsDelete))
		return nil
	}

	if chatsShow != 0 {
		chat, err := application.Chats.GetFullChat(ctx, chatsShow)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n\n", chat.Title)
		for _, m := range chat.Messages {
			who := "you"
			if !m.IsUser() {
				who = string(m.Platform)
			}
			fmt.Fprintf(out, "[%s]\n%s\n\n", who, m.Content)
		}
		return nil
	}

	rooms, err := application.Chats.ListRooms(ctx)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		fmt.Fprintln(out, "No chats yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPLATFORMS\tUPDATED")
	for _, room := range rooms {
		updated := time.Unix(room.UpdatedAt, 0).Format("2006-01-02 15:04")
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", room.ID, room.Title, model.JoinAPITypes(room.EnabledPlatforms), updated)
	}
	return w.Flush()
}
