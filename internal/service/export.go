package service

import (
	"fmt"
	"strings"
	"time"

	"multichat/backend/internal/model"
)

// ExportChat renders a transcript as Markdown and names the file.
func ExportChat(room model.ChatRoom, messages []model.Message, at time.Time) (filename, markdown string) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Chat Export: \"%s\"\n\n", room.Title)
	fmt.Fprintf(&b, "**Exported on:** %s\n\n", at.Format("2006-01-02 03:04 PM"))
	b.WriteString("---\n\n")
	b.WriteString("## Chat History\n\n")
	for _, m := range messages {
		if m.IsUser() {
			b.WriteString("**User:**\n")
		} else {
			b.WriteString("**Assistant:**\n")
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	filename = fmt.Sprintf("export_%s_%d.md", room.Title, at.UnixMilli())
	return filename, b.String()
}
