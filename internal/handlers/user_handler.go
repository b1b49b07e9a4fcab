package handlers

import (
	"errors"
	"fmt"

	"warbler/internal/middleware"
	"warbler/internal/services"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const likeLoginMessage = "Must be logged in to like a warble."

// UserHandler handles user pages, the follow graph and likes.
type UserHandler struct {
	users  *services.UserService
	social *services.SocialService
	likes  *services.LikeService
	log    *logrus.Entry
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, social *services.SocialService, likes *services.LikeService, log *logrus.Entry) *UserHandler {
	return &UserHandler{
		users:  users,
		social: social,
		likes:  likes,
		log:    log.WithField("handler", "users"),
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleList)
	userRoutes.Get("/:id", h.HandleShow)
	userRoutes.Get("/:id/following", middleware.RequireLogin(), h.HandleFollowing)
	userRoutes.Get("/:id/followers", middleware.RequireLogin(), h.HandleFollowers)
	userRoutes.Get("/:id/likes", h.HandleLikes)
	userRoutes.Post("/follow/:id", middleware.RequireLogin(), h.HandleFollow)
	userRoutes.Post("/stop-following/:id", middleware.RequireLogin(), h.HandleStopFollowing)
	userRoutes.Post("/add_like/:message_id", middleware.RequireLoginWithMessage(likeLoginMessage), h.HandleToggleLike)
	userRoutes.Post("/profile", middleware.RequireLogin(), h.HandleUpdateProfile)
	userRoutes.Post("/delete", middleware.RequireLogin(), h.HandleDelete)
}

// HandleList lists users, filtered by ?q= when given.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

// HandleShow shows a user's profile and latest messages.
func (h *UserHandler) HandleShow(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	profile, err := h.users.Profile(c.UserContext(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}

	resp := fiber.Map{"profile": profile}
	if me := middleware.CurrentUserID(c); me != 0 && me != userID {
		following, err := h.social.IsFollowing(c.UserContext(), me, userID)
		if err != nil {
			return err
		}
		resp["is_following"] = following
	}
	return c.JSON(resp)
}

// HandleFollowing lists the users a user follows.
func (h *UserHandler) HandleFollowing(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	following, err := h.social.Following(c.UserContext(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(following)
}

// HandleFollowers lists the followers of a user.
func (h *UserHandler) HandleFollowers(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	followers, err := h.social.Followers(c.UserContext(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(followers)
}

// HandleLikes lists the messages a user liked.
func (h *UserHandler) HandleLikes(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	liked, err := h.likes.Likes(c.UserContext(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(liked)
}

// HandleFollow makes the current user follow another one.
func (h *UserHandler) HandleFollow(c *fiber.Ctx) error {
	followedID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	me := middleware.CurrentUserID(c)
	if err := h.social.Follow(c.UserContext(), me, followedID); err != nil {
		return handleServiceError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d/following", me), fiber.StatusFound)
}

// HandleStopFollowing removes a follow edge of the current user.
func (h *UserHandler) HandleStopFollowing(c *fiber.Ctx) error {
	followedID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	me := middleware.CurrentUserID(c)
	if err := h.social.Unfollow(c.UserContext(), me, followedID); err != nil {
		return handleServiceError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/users/%d/following", me), fiber.StatusFound)
}

// HandleToggleLike likes or unlikes a message.
func (h *UserHandler) HandleToggleLike(c *fiber.Ctx) error {
	messageID, err := paramID(c, "message_id")
	if err != nil {
		return err
	}
	if _, err := h.likes.Toggle(c.UserContext(), middleware.CurrentUserID(c), messageID); err != nil {
		return handleServiceError(c, err)
	}
	return c.Redirect("/", fiber.StatusFound)
}

// HandleUpdateProfile edits the current user's profile.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		h.log.WithError(err).Warn("error parsing profile request body")
		return badBody(c, err)
	}

	me := middleware.CurrentUserID(c)
	_, err := h.users.UpdateProfile(c.UserContext(), me, in)
	if errors.Is(err, services.ErrUnauthorized) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Wrong password, please try again.",
		})
	}
	if err != nil {
		return handleServiceError(c, err)
	}

	session.FromContext(c).Flash("success", "Profile updated.")
	return c.Redirect(fmt.Sprintf("/users/%d", me), fiber.StatusFound)
}

// HandleDelete deletes the current user's account and logs them out.
func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), middleware.CurrentUserID(c)); err != nil {
		return handleServiceError(c, err)
	}
	sess := session.FromContext(c)
	sess.Logout()
	sess.Flash("success", "Your account has been deleted.")
	return c.Redirect("/", fiber.StatusFound)
}
