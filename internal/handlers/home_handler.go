package handlers

import (
	"errors"

	"warbler/internal/middleware"
	"warbler/internal/services"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

// HomeHandler serves the home page: pending flashes and, for a logged in user,
// their timeline.
type HomeHandler struct {
	users    *services.UserService
	messages *services.MessageService
	likes    *services.LikeService
}

func NewHomeHandler(users *services.UserService, messages *services.MessageService, likes *services.LikeService) *HomeHandler {
	return &HomeHandler{
		users:    users,
		messages: messages,
		likes:    likes,
	}
}

func (h *HomeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
}

func (h *HomeHandler) HandleHome(c *fiber.Ctx) error {
	resp := fiber.Map{
		"flashes": session.FromContext(c).PopFlashes(),
	}

	me := middleware.CurrentUserID(c)
	if me == 0 {
		return c.JSON(resp)
	}

	user, err := h.users.Get(c.UserContext(), me)
	if errors.Is(err, services.ErrNotFound) {
		session.FromContext(c).Logout()
		return c.JSON(resp)
	}
	if err != nil {
		return err
	}

	timeline, err := h.messages.Timeline(c.UserContext(), me, services.TimelineLimit)
	if err != nil {
		return err
	}
	liked, err := h.likes.Likes(c.UserContext(), me)
	if err != nil {
		return err
	}
	likedIDs := make([]uint, 0, len(liked.Messages))
	for _, m := range liked.Messages {
		likedIDs = append(likedIDs, m.ID)
	}

	resp["user"] = user
	resp["messages"] = timeline
	resp["likes"] = likedIDs
	return c.JSON(resp)
}
