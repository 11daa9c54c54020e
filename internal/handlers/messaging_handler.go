package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/tahsinn/campus-found/backend/internal/models"
	"github.com/tahsinn/campus-found/backend/internal/services"
)

// MessagingHandler handles conversation and message HTTP requests
type MessagingHandler struct {
	messagingService *services.MessagingService
}

// NewMessagingHandler creates a new MessagingHandler
func NewMessagingHandler(messagingService *services.MessagingService) *MessagingHandler {
	return &MessagingHandler{messagingService: messagingService}
}

// RegisterMessagingRoutes registers messaging routes
func (h *MessagingHandler) RegisterMessagingRoutes(g *echo.Group) {
	g.GET("/conversations", h.ListConversations)
	g.GET("/conversations/:id/messages", h.ListMessages)
	g.POST("/conversations/actions", h.Action)
}

// ListConversations returns the caller's conversations. Reading is
// what materializes threads for newly adjudicated claims, so the
// deriver runs first.
func (h *MessagingHandler) ListConversations(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversations, err := h.messagingService.ListConversations(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"conversations": conversations}})
}

// ListMessages returns a conversation's messages in order
func (h *MessagingHandler) ListMessages(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID")
	}

	messages, err := h.messagingService.ListMessages(c.Request().Context(), actor, uint(conversationID))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"messages": messages}})
}

// Action dispatches the single action-typed messaging endpoint
func (h *MessagingHandler) Action(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var action models.MessagingAction
	if err := c.Bind(&action); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(action); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ctx := c.Request().Context()
	switch action.Action {
	case "send":
		msg, err := h.messagingService.Send(ctx, actor, action)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"message": msg}})

	case "edit_message":
		msg, err := h.messagingService.EditMessage(ctx, actor, action.MessageID, action.Body)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"message": msg}})

	case "delete_message":
		if err := h.messagingService.DeleteMessage(ctx, actor, action.MessageID); err != nil {
			return httpError(err)
		}

	case "mark_read":
		if err := h.messagingService.MarkRead(ctx, actor, action.ConversationID); err != nil {
			return httpError(err)
		}

	case "mark_unread":
		if err := h.messagingService.MarkUnread(ctx, actor, action.ConversationID); err != nil {
			return httpError(err)
		}

	case "clear_conversation":
		if err := h.messagingService.ClearConversation(ctx, actor, action.ConversationID); err != nil {
			return httpError(err)
		}

	case "delete_conversation":
		if err := h.messagingService.DeleteConversation(ctx, actor, action.ConversationID); err != nil {
			return httpError(err)
		}

	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown action")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
