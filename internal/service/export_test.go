package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"multichat/backend/internal/model"
	"multichat/backend/internal/service"
)

func TestExportChat(t *testing.T) {
	at := time.Date(2024, 1, 2, 9, 5, 0, 0, time.UTC)
	room := model.ChatRoom{ID: 1, Title: "Math"}
	messages := []model.Message{
		{Content: "What is 2+2?"},
		{Content: "4", Platform: model.APIOllama},
		{Content: "Four.", Platform: model.APIOnDevice},
	}

	filename, markdown := service.ExportChat(room, messages, at)

	assert.Equal(t, "export_Math_1704186300000.md", filename)
	assert.Equal(t, "# Chat Export: \"Math\"\n\n"+
		"**Exported on:** 2024-01-02 09:05 AM\n\n"+
		"---\n\n"+
		"## Chat History\n\n"+
		"**User:**\nWhat is 2+2?\n\n"+
		"**Assistant:**\n4\n\n"+
		"**Assistant:**\nFour.\n\n", markdown)
}

func TestExportChat_Empty(t *testing.T) {
	_, markdown := service.ExportChat(model.ChatRoom{Title: model.DefaultChatTitle}, nil, time.Unix(0, 0))
	assert.Contains(t, markdown, "## Chat History\n\n")
	assert.NotContains(t, markdown, "**User:**")
}
