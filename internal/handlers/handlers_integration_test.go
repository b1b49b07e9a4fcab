package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"warbler/internal/cache"
	"warbler/internal/database"
	"warbler/internal/logger"
	"warbler/internal/models"
	"warbler/internal/repositories"
	"warbler/internal/server"
	"warbler/internal/services"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	repos    repositories.Repositories
	sessions *session.Manager
	auth     *services.AuthService

	testuser *models.User
	users    []*models.User // usr1..usr4
}

// setupApp sets up the full application over a private in-memory SQLite database
// with testuser and usr1..usr4 signed up.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Discard()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Open("sqlite", dsn, log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	userCache := cache.NewLocal(time.Minute)
	t.Cleanup(func() {
		userCache.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	uow := repositories.NewGORMUnitOfWork(db, log)
	env := &testEnv{
		db:       db,
		repos:    repositories.NewGORMRepositories(db),
		sessions: session.NewManager("test_secret", time.Hour, false),
		auth:     services.NewAuthService(uow, nil, bcrypt.MinCost, log),
	}
	env.app = server.New(server.Services{
		Auth:     env.auth,
		Users:    services.NewUserService(uow, userCache, time.Minute, nil, log),
		Social:   services.NewSocialService(uow, nil, log),
		Messages: services.NewMessageService(uow, nil, log),
		Likes:    services.NewLikeService(uow, nil, log),
	}, server.Options{
		Sessions: env.sessions,
		Log:      log,
		Broker:   "disabled",
	})

	env.testuser = env.signup(t, "testuser", "test@test.com", "testuser")
	for i := 1; i <= 4; i++ {
		env.users = append(env.users, env.signup(t, fmt.Sprintf("usr%d", i), fmt.Sprintf("email%d@email.com", i), "password"))
	}
	return env
}

func (e *testEnv) signup(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	user, err := e.auth.Signup(context.Background(), services.SignupInput{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	return user
}

func (e *testEnv) message(t *testing.T, userID uint, text string) *models.Message {
	t.Helper()
	message := &models.Message{Text: text, UserID: userID}
	require.NoError(t, e.repos.Messages.Create(message))
	return message
}

func (e *testEnv) countMessages(t *testing.T, text string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Message{}).Where("text = ?", text).Count(&n).Error)
	return n
}

// client keeps the session cookie between requests like a browser.
type client struct {
	t      *testing.T
	env    *testEnv
	cookie *http.Cookie
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, env: e}
}

// loggedIn returns a client whose session already holds userID.
func (e *testEnv) loggedIn(t *testing.T, userID uint) *client {
	token, err := e.sessions.Encode(userID)
	require.NoError(t, err)
	return &client{t: t, env: e, cookie: &http.Cookie{Name: session.CookieName, Value: token}}
}

func (c *client) do(method, path string, form url.Values) *http.Response {
	c.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	resp, err := c.env.app.Test(req, -1)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Name != session.CookieName {
			continue
		}
		if ck.Value == "" {
			c.cookie = nil
		} else {
			c.cookie = ck
		}
	}
	return resp
}

// follow is do followed by GETs of every redirect.
func (c *client) follow(method, path string, form url.Values) *http.Response {
	c.t.Helper()
	resp := c.do(method, path, form)
	for resp.StatusCode == http.StatusFound {
		location := resp.Header.Get("Location")
		resp.Body.Close()
		resp = c.do(http.MethodGet, location, nil)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestSignupLoginLogout(t *testing.T) {
	env := setupApp(t)
	c := env.client(t)

	form := url.Values{"username": {"newbie"}, "email": {"newbie@test.com"}, "password": {"secret123"}}
	resp := c.do(http.MethodPost, "/signup", form)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	require.NotNil(t, c.cookie)

	var home struct {
		User *models.User `json:"user"`
	}
	decode(t, c.do(http.MethodGet, "/", nil), &home)
	require.NotNil(t, home.User)
	assert.Equal(t, "newbie", home.User.Username)
	assert.Equal(t, models.DefaultImageURL, home.User.ImageURL)

	// Test duplicate username
	dup := env.client(t)
	resp = dup.do(http.MethodPost, "/signup", url.Values{"username": {"newbie"}, "email": {"other@test.com"}, "password": {"secret123"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Username or email already taken"}`, readBody(t, resp))

	// Test duplicate email
	resp = dup.do(http.MethodPost, "/signup", url.Values{"username": {"other"}, "email": {"newbie@test.com"}, "password": {"secret123"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Username or email already taken"}`, readBody(t, resp))

	// Test validation
	resp = dup.do(http.MethodPost, "/signup", url.Values{"username": {"x"}, "email": {"bad"}, "password": {"123"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Field 'Email' failed on the 'email' tag")

	// Test logout
	body := readBody(t, c.follow(http.MethodPost, "/logout", nil))
	assert.Contains(t, body, "You have successfully logged out.")
	assert.Nil(t, c.cookie)

	// Test bad credentials
	resp = c.do(http.MethodPost, "/login", url.Values{"username": {"newbie"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = c.do(http.MethodPost, "/login", url.Values{"username": {"nobody"}, "password": {"secret123"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Test login
	body = readBody(t, c.follow(http.MethodPost, "/login", url.Values{"username": {"newbie"}, "password": {"secret123"}}))
	assert.Contains(t, body, "Hello, newbie!")
	assert.NotNil(t, c.cookie)
}

func TestAddMessage(t *testing.T) {
	env := setupApp(t)
	c := env.loggedIn(t, env.testuser.ID)

	resp := c.do(http.MethodPost, "/messages/new", url.Values{"text": {"Hello"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/users/%d", env.testuser.ID), resp.Header.Get("Location"))

	messages, err := env.repos.Messages.ByUser(env.testuser.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Hello", messages[0].Text)

	resp = c.do(http.MethodPost, "/messages/new", url.Values{"text": {strings.Repeat("a", 141)}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAddMessageNoSession(t *testing.T) {
	env := setupApp(t)
	c := env.client(t)

	resp := c.follow(http.MethodPost, "/messages/new", url.Values{"text": {"Hello"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Access unauthorized.")
	assert.Zero(t, env.countMessages(t, "Hello"))
}

func TestAddMessageInvalidUser(t *testing.T) {
	env := setupApp(t)
	c := env.loggedIn(t, 99222224)

	resp := c.follow(http.MethodPost, "/messages/new", url.Values{"text": {"Hello"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Zero(t, env.countMessages(t, "Hello"))
}

func TestShowMessage(t *testing.T) {
	env := setupApp(t)
	m := env.message(t, env.testuser.ID, "a test message")
	c := env.client(t)

	resp := c.do(http.MethodGet, fmt.Sprintf("/messages/%d", m.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), m.Text)

	resp = c.do(http.MethodGet, "/messages/99999999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = c.do(http.MethodGet, "/messages/abc", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteMessage(t *testing.T) {
	env := setupApp(t)
	m := env.message(t, env.testuser.ID, "a test message")
	c := env.loggedIn(t, env.testuser.ID)

	resp := c.follow(http.MethodPost, fmt.Sprintf("/messages/%d/delete", m.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	count, err := env.repos.Messages.CountByUser(env.testuser.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// deleting it again is refused like any other non-owned id
	resp = c.follow(http.MethodPost, fmt.Sprintf("/messages/%d/delete", m.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Access unauthorized.")
}

func TestDeleteMessageNoLogin(t *testing.T) {
	env := setupApp(t)
	m := env.message(t, env.testuser.ID, "a test message")
	c := env.client(t)

	resp := c.follow(http.MethodPost, fmt.Sprintf("/messages/%d/delete", m.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Access unauthorized.")
	assert.Equal(t, int64(1), env.countMessages(t, "a test message"))

	// refused the same way when the message does not exist
	resp = c.follow(http.MethodPost, "/messages/424242/delete", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Access unauthorized.")
}

func TestDeleteMessageWrongUser(t *testing.T) {
	env := setupApp(t)
	m := env.message(t, env.testuser.ID, "a test message")
	c := env.loggedIn(t, env.users[0].ID)

	resp := c.follow(http.MethodPost, fmt.Sprintf("/messages/%d/delete", m.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Access unauthorized.")
	assert.Equal(t, int64(1), env.countMessages(t, "a test message"))

	// a missing id looks the same as someone else's message
	resp = c.do(http.MethodPost, "/messages/424242/delete", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	resp.Body.Close()

	resp = c.follow(http.MethodPost, "/messages/424242/delete", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Access unauthorized.")
	assert.Equal(t, int64(1), env.countMessages(t, "a test message"))
}

type userList struct {
	Users []models.User `json:"users"`
	Count int           `json:"count"`
}

func usernames(users []models.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names
}

func TestUserListAndSearch(t *testing.T) {
	env := setupApp(t)
	c := env.client(t)

	var all userList
	decode(t, c.do(http.MethodGet, "/users", nil), &all)
	assert.ElementsMatch(t, []string{"testuser", "usr1", "usr2", "usr3", "usr4"}, usernames(all.Users))

	var found userList
	decode(t, c.do(http.MethodGet, "/users?q=usr", nil), &found)
	assert.ElementsMatch(t, []string{"usr1", "usr2", "usr3", "usr4"}, usernames(found.Users))
	assert.Equal(t, 4, found.Count)
}

func TestUserDetails(t *testing.T) {
	env := setupApp(t)
	usr1 := env.users[0]
	env.message(t, usr1.ID, "abc")
	require.NoError(t, env.repos.Follows.Create(env.testuser.ID, usr1.ID))

	var detail struct {
		Profile     services.Profile `json:"profile"`
		IsFollowing *bool            `json:"is_following"`
	}
	resp := env.client(t).do(http.MethodGet, fmt.Sprintf("/users/%d", usr1.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &detail)
	assert.Equal(t, "usr1", detail.Profile.User.Username)
	assert.Equal(t, int64(1), detail.Profile.MessageCount)
	assert.Equal(t, int64(1), detail.Profile.FollowersCount)
	assert.Equal(t, int64(0), detail.Profile.FollowingCount)
	assert.Equal(t, int64(0), detail.Profile.LikesCount)
	assert.Nil(t, detail.IsFollowing)

	resp = env.loggedIn(t, env.testuser.ID).do(http.MethodGet, fmt.Sprintf("/users/%d", usr1.ID), nil)
	decode(t, resp, &detail)
	require.NotNil(t, detail.IsFollowing)
	assert.True(t, *detail.IsFollowing)

	resp = env.client(t).do(http.MethodGet, "/users/424242", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestToggleLike(t *testing.T) {
	env := setupApp(t)
	usr1 := env.users[0]
	m1 := env.message(t, usr1.ID, "abc")
	m2 := env.message(t, usr1.ID, "xyz")
	c := env.loggedIn(t, env.testuser.ID)

	resp := c.do(http.MethodPost, fmt.Sprintf("/users/add_like/%d", m1.ID), nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp.Body.Close()
	resp = c.do(http.MethodPost, fmt.Sprintf("/users/add_like/%d", m2.ID), nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp.Body.Close()

	liked, err := env.repos.Likes.LikedMessages(env.testuser.ID)
	require.NoError(t, err)
	assert.Len(t, liked, 2)

	// a second toggle removes the like
	resp = c.do(http.MethodPost, fmt.Sprintf("/users/add_like/%d", m1.ID), nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp.Body.Close()

	liked, err = env.repos.Likes.LikedMessages(env.testuser.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, m2.ID, liked[0].ID)

	// Test own message
	resp = env.loggedIn(t, usr1.ID).do(http.MethodPost, fmt.Sprintf("/users/add_like/%d", m1.ID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Forbidden"}`, readBody(t, resp))

	// Test missing message
	resp = c.do(http.MethodPost, "/users/add_like/424242", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestShowLikes(t *testing.T) {
	env := setupApp(t)
	usr1 := env.users[0]
	m1 := env.message(t, usr1.ID, "abc")
	env.message(t, usr1.ID, "xyz")
	require.NoError(t, env.repos.Likes.Create(env.testuser.ID, m1.ID))

	resp := env.client(t).do(http.MethodGet, fmt.Sprintf("/users/%d/likes", env.testuser.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var likes services.LikedMessages
	decode(t, resp, &likes)
	assert.Equal(t, 1, likes.Count)
	require.Len(t, likes.Messages, 1)
	assert.Equal(t, "abc", likes.Messages[0].Text)
}

func TestAddLikeNoLogin(t *testing.T) {
	env := setupApp(t)
	usr1 := env.users[0]
	m1 := env.message(t, usr1.ID, "abc")
	m2 := env.message(t, usr1.ID, "xyz")
	require.NoError(t, env.repos.Likes.Create(env.testuser.ID, m2.ID))

	resp := env.client(t).follow(http.MethodPost, fmt.Sprintf("/users/add_like/%d", m1.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Must be logged in to like a warble.")

	count, err := env.repos.Likes.CountByUser(env.testuser.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestShowFollowingAndFollowers(t *testing.T) {
	env := setupApp(t)
	usr3, usr4 := env.users[2], env.users[3]
	require.NoError(t, env.repos.Follows.Create(env.testuser.ID, usr4.ID))
	require.NoError(t, env.repos.Follows.Create(env.testuser.ID, usr3.ID))
	require.NoError(t, env.repos.Follows.Create(usr3.ID, env.testuser.ID))
	c := env.loggedIn(t, env.testuser.ID)

	var following services.Connections
	resp := c.do(http.MethodGet, fmt.Sprintf("/users/%d/following", env.testuser.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &following)
	assert.ElementsMatch(t, []string{"usr3", "usr4"}, usernames(following.Users))
	assert.Equal(t, 2, following.Count)

	var followers services.Connections
	resp = c.do(http.MethodGet, fmt.Sprintf("/users/%d/followers", env.testuser.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &followers)
	assert.Equal(t, []string{"usr3"}, usernames(followers.Users))
}

func TestShowFollowsNoLogin(t *testing.T) {
	env := setupApp(t)
	require.NoError(t, env.repos.Follows.Create(env.testuser.ID, env.users[3].ID))

	for _, path := range []string{"following", "followers"} {
		resp := env.client(t).follow(http.MethodGet, fmt.Sprintf("/users/%d/%s", env.testuser.ID, path), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "Access unauthorized.")
	}
}

func TestFollowAndStopFollowing(t *testing.T) {
	env := setupApp(t)
	usr1 := env.users[0]
	c := env.loggedIn(t, env.testuser.ID)
	location := fmt.Sprintf("/users/%d/following", env.testuser.ID)

	resp := c.do(http.MethodPost, fmt.Sprintf("/users/follow/%d", usr1.ID), nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get("Location"))
	resp.Body.Close()

	following, err := env.repos.Follows.Exists(env.testuser.ID, usr1.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// following twice is harmless
	resp = c.do(http.MethodPost, fmt.Sprintf("/users/follow/%d", usr1.ID), nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp.Body.Close()

	resp = c.do(http.MethodPost, "/users/follow/424242", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = c.do(http.MethodPost, fmt.Sprintf("/users/follow/%d", env.testuser.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = c.do(http.MethodPost, fmt.Sprintf("/users/stop-following/%d", usr1.ID), nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get("Location"))
	resp.Body.Close()

	following, err = env.repos.Follows.Exists(env.testuser.ID, usr1.ID)
	require.NoError(t, err)
	assert.False(t, following)

	// no edge left to remove
	resp = c.do(http.MethodPost, fmt.Sprintf("/users/stop-following/%d", usr1.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = c.do(http.MethodPost, "/users/stop-following/424242", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	anon := env.client(t).follow(http.MethodPost, fmt.Sprintf("/users/follow/%d", usr1.ID), nil)
	assert.Contains(t, readBody(t, anon), "Access unauthorized.")
}

func TestUpdateProfile(t *testing.T) {
	env := setupApp(t)
	c := env.loggedIn(t, env.testuser.ID)

	form := url.Values{
		"username": {"renamed"},
		"email":    {"renamed@test.com"},
		"bio":      {"hello there"},
		"password": {"wrong"},
	}
	resp := c.do(http.MethodPost, "/users/profile", form)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	form.Set("password", "testuser")
	form.Set("username", "usr1")
	resp = c.do(http.MethodPost, "/users/profile", form)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	form.Set("username", "renamed")
	resp = c.do(http.MethodPost, "/users/profile", form)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp.Body.Close()

	user, err := env.repos.Users.GetByID(env.testuser.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", user.Username)
	assert.Equal(t, "hello there", user.Bio)

	// the password still works after the edit
	authed, err := env.auth.Authenticate(context.Background(), "renamed", "testuser")
	require.NoError(t, err)
	assert.NotNil(t, authed)
}

func TestDeleteAccount(t *testing.T) {
	env := setupApp(t)
	env.message(t, env.testuser.ID, "bye")
	c := env.loggedIn(t, env.testuser.ID)

	body := readBody(t, c.follow(http.MethodPost, "/users/delete", nil))
	assert.Contains(t, body, "Your account has been deleted.")
	assert.Nil(t, c.cookie)

	_, err := env.repos.Users.GetByID(env.testuser.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Zero(t, env.countMessages(t, "bye"))

	// an old cookie for the deleted account is anonymous
	stale := env.loggedIn(t, env.testuser.ID)
	resp := stale.follow(http.MethodPost, "/messages/new", url.Values{"text": {"ghost"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Access unauthorized.")
	assert.Zero(t, env.countMessages(t, "ghost"))
}

func TestHomeTimeline(t *testing.T) {
	env := setupApp(t)
	usr1, usr2 := env.users[0], env.users[1]
	env.message(t, env.testuser.ID, "mine")
	env.message(t, usr1.ID, "followed")
	env.message(t, usr2.ID, "stranger")
	require.NoError(t, env.repos.Follows.Create(env.testuser.ID, usr1.ID))

	var home struct {
		Messages []models.Message `json:"messages"`
	}
	decode(t, env.loggedIn(t, env.testuser.ID).do(http.MethodGet, "/", nil), &home)
	texts := make([]string, 0, len(home.Messages))
	for _, m := range home.Messages {
		texts = append(texts, m.Text)
	}
	assert.ElementsMatch(t, []string{"mine", "followed"}, texts)

	var anon map[string]interface{}
	decode(t, env.client(t).do(http.MethodGet, "/", nil), &anon)
	assert.NotContains(t, anon, "messages")
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupApp(t)
	c := env.client(t)

	resp := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "healthy")

	resp = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "http_request_duration_seconds")
}
