package dto

import (
	"time"

	"smartcity-be/internal/model"
)

type CreateSessionResponse struct {
	Id         string                   `json:"id"`
	Transcript []model.ConversationTurn `json:"transcript"`
}

type SendChatRequest struct {
	ChatSessionId string `json:"chat_session_id" validate:"required,uuid"`
	Chat          string `json:"chat" validate:"required,max=500"`
}

type SendChatResponse struct {
	ChatSessionId string                 `json:"chat_session_id"`
	Sent          model.ConversationTurn `json:"sent"`
	ReplyDueAt    time.Time              `json:"reply_due_at"`
}

type GetTranscriptResponse struct {
	ChatSessionId string                   `json:"chat_session_id"`
	Turns         []model.ConversationTurn `json:"turns"`
}
