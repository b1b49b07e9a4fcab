package handlers

import (
	"errors"
	"fmt"

	"warbler/internal/monitoring"
	"warbler/internal/services"
	"warbler/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         *logrus.Entry
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		log:         log.WithField("handler", "auth"),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/signup", h.HandleSignup)
	router.Post("/login", h.HandleLogin)
	router.Get("/logout", h.HandleLogout)
	router.Post("/logout", h.HandleLogout)
}

// HandleSignup creates the account and logs it in.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var in services.SignupInput
	if err := c.BodyParser(&in); err != nil {
		h.log.WithError(err).Warn("error parsing signup request body")
		return badBody(c, err)
	}

	user, err := h.authService.Signup(c.UserContext(), in)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			monitoring.SignupFailure.WithLabelValues("validation").Inc()
		case errors.Is(err, services.ErrDuplicate):
			monitoring.SignupFailure.WithLabelValues("duplicate").Inc()
		default:
			monitoring.SignupFailure.WithLabelValues("internal").Inc()
		}
		return handleServiceError(c, err)
	}

	monitoring.SignupSuccess.Inc()
	session.FromContext(c).Login(user.ID)
	return c.Redirect("/", fiber.StatusFound)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleLogin checks the credentials and stores the user in the session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.WithError(err).Warn("error parsing login request body")
		return badBody(c, err)
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	user, err := h.authService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	if user == nil {
		monitoring.LoginFailure.Inc()
		h.log.WithField("username", req.Username).Info("invalid credentials")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid credentials.",
		})
	}

	monitoring.LoginSuccess.Inc()
	sess := session.FromContext(c)
	sess.Login(user.ID)
	sess.Flash("success", fmt.Sprintf("Hello, %s!", user.Username))
	return c.Redirect("/", fiber.StatusFound)
}

// HandleLogout forgets the session's user.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess := session.FromContext(c)
	sess.Logout()
	sess.Flash("success", "You have successfully logged out.")
	return c.Redirect("/", fiber.StatusFound)
}
