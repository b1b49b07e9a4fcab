package handlers

import (
	"fmt"

	"warbler/internal/middleware"
	"warbler/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// MessageHandler handles HTTP requests for messages.
type MessageHandler struct {
	service *services.MessageService
	log     *logrus.Entry
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(service *services.MessageService, log *logrus.Entry) *MessageHandler {
	return &MessageHandler{
		service: service,
		log:     log.WithField("handler", "messages"),
	}
}

// RegisterRoutes registers the message routes with the Fiber app.
func (h *MessageHandler) RegisterRoutes(router fiber.Router) {
	messageRoutes := router.Group("/messages")
	messageRoutes.Post("/new", middleware.RequireLogin(), h.HandleCreate)
	messageRoutes.Get("/:id", h.HandleShow)
	messageRoutes.Post("/:id/delete", middleware.RequireLogin(), h.HandleDelete)
}

// HandleCreate posts a message as the current user.
func (h *MessageHandler) HandleCreate(c *fiber.Ctx) error {
	var in services.MessageInput
	if err := c.BodyParser(&in); err != nil {
		h.log.WithError(err).Warn("error parsing message request body")
		return badBody(c, err)
	}

	me := middleware.CurrentUserID(c)
	if _, err := h.service.Create(c.UserContext(), me, in); err != nil {
		return handleServiceError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d", me), fiber.StatusFound)
}

// HandleShow retrieves a single message by its ID.
func (h *MessageHandler) HandleShow(c *fiber.Ctx) error {
	messageID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	message, err := h.service.Get(c.UserContext(), messageID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(message)
}

// HandleDelete deletes a message owned by the current user.
func (h *MessageHandler) HandleDelete(c *fiber.Ctx) error {
	messageID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	me := middleware.CurrentUserID(c)
	if err := h.service.Delete(c.UserContext(), me, messageID); err != nil {
		return handleServiceError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d", me), fiber.StatusFound)
}
