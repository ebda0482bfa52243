package handler

import (
	"net/http"

	"anoa.com/devsearch/internal/modules/message/dto"
	message "anoa.com/devsearch/internal/modules/message/service"
	"anoa.com/devsearch/pkg/logger"
	"anoa.com/devsearch/pkg/request"
	"anoa.com/devsearch/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type MessageHandler struct {
	service     message.MessageService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

// NewMessageHandler accepts websocket origins the same way CORS does; an
// empty list or "*" allows all.
func NewMessageHandler(service message.MessageService, redisClient *redis.Client, origins []string) *MessageHandler {
	return &MessageHandler{
		service:     service,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, o := range origins {
					if o == "*" || o == origin {
						return true
					}
				}
				return len(origins) == 0
			},
		},
	}
}

func (h *MessageHandler) GetInbox(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.Inbox(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *MessageHandler) GetMessage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := request.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.ViewMessage(c.Request.Context(), userID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	recipientID, err := request.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.SendMessageInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, "invalid message", err)
		return
	}

	res, err := h.service.SendMessage(c.Request.Context(), response.OptionalUserID(c), recipientID, input, c.ClientIP())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Redirect(c, http.StatusCreated, message.MsgSent, message.RedirectProfile(recipientID), res)
}

// StreamInbox forwards every message published for the caller's profile
// until either side disconnects.
func (h *MessageHandler) StreamInbox(c *gin.Context) {
	if h.redisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live inbox is not configured"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profileID, err := h.service.RecipientProfileID(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, message.InboxChannel(profileID))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		logger.Log.WithError(err).Error("failed to subscribe to inbox channel")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live inbox is unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to upgrade websocket")
		return
	}
	defer conn.Close()

	ch := pubsub.Channel()
	clientClosed := make(chan struct{})

	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				logger.Log.WithError(err).Warn("failed to write inbox message")
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
