package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"wink-server/internal/model"
	"wink-server/internal/trigger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ChatMessageCreatedPath = "/events/chat-message-created"
	maxEventBodyBytes      = 1 << 20
)

// EventHandler is implemented by service.Dispatcher.
type EventHandler interface {
	HandleMessageCreated(ctx context.Context, event *model.ChatMessageEvent) model.Outcome
}

// ChatEventResponse - ответ на доставленное платформой событие.
type ChatEventResponse struct {
	Outcome           string `json:"outcome"`
	MessageID         string `json:"message_id"`
	ProviderMessageID string `json:"provider_message_id,omitempty"`
	Error             string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ChatEventHandler struct {
	handler EventHandler
	timeout time.Duration
	logger  *zap.Logger
}

func NewChatEventHandler(h EventHandler, timeout time.Duration, logger *zap.Logger) *ChatEventHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatEventHandler{
		handler: h,
		timeout: timeout,
		logger:  logger.Named("ChatEventHandler"),
	}
}

// RegisterRoutes регистрирует health check и endpoint событий. auth применяется
// только к endpoint событий.
func (h *ChatEventHandler) RegisterRoutes(router gin.IRouter, auth gin.HandlerFunc) {
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	events := router.Group("/events")
	if auth != nil {
		events.Use(auth)
	}
	events.POST("/chat-message-created", h.chatMessageCreated)
}

// chatMessageCreated отвечает 400 только на нераспознанное событие. Любой
// результат обработки - 200, чтобы платформа не повторяла доставку.
func (h *ChatEventHandler) chatMessageCreated(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxEventBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Warn("Failed to read event body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable request body"})
		return
	}

	event, err := trigger.Decode(body)
	if err != nil {
		h.logger.Warn("Rejecting undecodable event", zap.Error(err))
		msg := "malformed event"
		if errors.Is(err, trigger.ErrUnexpectedDocumentPath) {
			msg = "unexpected document path"
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	outcome := h.handler.HandleMessageCreated(ctx, event)

	resp := ChatEventResponse{
		Outcome:   outcome.Kind.String(),
		MessageID: event.MessageID,
	}
	if outcome.Kind == model.OutcomeSent {
		resp.ProviderMessageID = outcome.MessageID
	}
	if outcome.Err != nil {
		resp.Error = outcome.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
