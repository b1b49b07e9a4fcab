// Package session keeps per-browser state (the logged in user and pending flash
// messages) in a signed cookie.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

const (
	CookieName = "warbler_session"
	localsKey  = "session"
)

// Flash is a one-shot message shown on the next page the browser loads.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Session is the decoded cookie of one request. Mutations mark it dirty so the
// middleware re-issues the cookie.
type Session struct {
	userID  uint
	flashes []Flash
	dirty   bool
}

// UserID returns the logged in user, or 0 for an anonymous session.
func (s *Session) UserID() uint {
	return s.userID
}

func (s *Session) Authenticated() bool {
	return s.userID != 0
}

func (s *Session) Login(userID uint) {
	s.userID = userID
	s.dirty = true
}

func (s *Session) Logout() {
	if s.userID != 0 {
		s.userID = 0
		s.dirty = true
	}
}

func (s *Session) Flash(category, message string) {
	s.flashes = append(s.flashes, Flash{Category: category, Message: message})
	s.dirty = true
}

// PopFlashes returns the pending flashes and forgets them.
func (s *Session) PopFlashes() []Flash {
	flashes := s.flashes
	if len(flashes) > 0 {
		s.flashes = nil
		s.dirty = true
	}
	return flashes
}

type claims struct {
	UserID  uint    `json:"curr_user,omitempty"`
	Flashes []Flash `json:"flashes,omitempty"`
	jwt.StandardClaims
}

// Manager signs and verifies session cookies.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

// Encode signs the session as an HS256 token.
func (m *Manager) Encode(userID uint, flashes ...Flash) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:  userID,
		Flashes: flashes,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.ttl).Unix(),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies a token produced by Encode.
func (m *Manager) Decode(tokenString string) (*Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session")
	}
	return &Session{userID: c.UserID, flashes: c.Flashes}, nil
}

// Middleware loads the session from the cookie (or an "Authorization: Bearer"
// header) before the handler runs and writes it back afterwards if it changed.
// A tampered or expired cookie yields an anonymous session and is cleared.
func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := &Session{}
		raw := c.Cookies(CookieName)
		if raw == "" {
			parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				raw = parts[1]
			}
		}
		if raw != "" {
			if decoded, err := m.Decode(raw); err == nil {
				sess = decoded
			} else {
				sess.dirty = true
			}
		}
		c.Locals(localsKey, sess)

		err := c.Next()

		if sess.dirty {
			if writeErr := m.write(c, sess); writeErr != nil && err == nil {
				err = writeErr
			}
		}
		return err
	}
}

func (m *Manager) write(c *fiber.Ctx, sess *Session) error {
	if !sess.Authenticated() && len(sess.flashes) == 0 {
		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			Secure:   m.secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return nil
	}

	value, err := m.Encode(sess.userID, sess.flashes...)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(m.ttl),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// FromContext returns the session loaded by Middleware. Outside the middleware
// it returns a throwaway anonymous session.
func FromContext(c *fiber.Ctx) *Session {
	if sess, ok := c.Locals(localsKey).(*Session); ok {
		return sess
	}
	return &Session{}
}
