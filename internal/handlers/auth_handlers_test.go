package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mioNacs/BLManagementSystem/internal/config"
	"github.com/mioNacs/BLManagementSystem/internal/handlers"
	"github.com/mioNacs/BLManagementSystem/internal/mailer"
	"github.com/mioNacs/BLManagementSystem/internal/middlewares"
	"github.com/mioNacs/BLManagementSystem/internal/models"
	"github.com/mioNacs/BLManagementSystem/internal/repository"
	"github.com/mioNacs/BLManagementSystem/internal/routes"
	"github.com/mioNacs/BLManagementSystem/internal/server"
	"github.com/mioNacs/BLManagementSystem/internal/services"
	"github.com/mioNacs/BLManagementSystem/internal/utils"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = primitive.NewObjectID()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *memUserRepo) FindByRollNo(_ context.Context, rollNo string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.RollNo == rollNo })
}

func (r *memUserRepo) FindByContactNo(_ context.Context, contactNo string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ContactNo == contactNo })
}

func (r *memUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) ExistsOther(_ context.Context, field, value string, excludeID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == excludeID {
			continue
		}
		switch field {
		case "username":
			if u.Username == value {
				return true, nil
			}
		case "email":
			if strings.EqualFold(u.Email, value) {
				return true, nil
			}
		case "rollNo":
			if u.RollNo == value {
				return true, nil
			}
		case "contactNo":
			if u.ContactNo == value {
				return true, nil
			}
		}
	}
	return false, nil
}

type memEventRepo struct {
	mu     sync.Mutex
	events map[primitive.ObjectID]*models.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: map[primitive.ObjectID]*models.Event{}}
}

func (r *memEventRepo) Create(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = primitive.NewObjectID()
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *memEventRepo) FindAll(_ context.Context) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Event{}
	for _, e := range r.events {
		out = append(out, *e)
	}
	return out, nil
}

func (r *memEventRepo) UpdateByID(_ context.Context, id primitive.ObjectID, e *models.Event) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	stored.Title = e.Title
	stored.Description = e.Description
	stored.StartingDate = e.StartingDate
	stored.Time = e.Time
	stored.Location = e.Location
	stored.Category = e.Category
	stored.Status = e.Status
	cp := *stored
	return &cp, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"

	logger := zap.NewNop()
	sugar := logger.Sugar()

	userRepo := newMemUserRepo()
	tokens := utils.NewTokenManager("access-secret", "refresh-secret", 15, 7, 15)
	hasher := utils.NewPasswordHasher(4)
	mail := mailer.NewClient("", "", "", "")

	authSvc := services.NewAuthService(userRepo, hasher, tokens, mail, "http://localhost:5173", sugar)
	eventSvc := services.NewEventService(newMemEventRepo())

	app := server.New(cfg, logger)
	routes.Setup(app,
		handlers.NewAuthHandler(authSvc, sugar, false, tokens.AccessTTL(), tokens.RefreshTTL()),
		handlers.NewEventHandler(eventSvc, sugar),
		middlewares.RequireAuth(tokens, userRepo),
		routes.Limiters{},
	)
	server.NotFoundFallback(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]interface{}, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func aliceBody() map[string]interface{} {
	return map[string]interface{}{
		"username":  "alice",
		"email":     "a@x.com",
		"password":  "pw123456",
		"gender":    "female",
		"semester":  4,
		"branch":    "CSE",
		"rollNo":    "21CS001",
		"course":    "B.Tech",
		"contactNo": "9876543210",
	}
}

func TestRegisterSetsCookiesAndSanitizesBody(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", aliceBody())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	access := cookieByName(resp, "accessToken")
	refresh := cookieByName(resp, "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.NotEmpty(t, access.Value)
	assert.NotEmpty(t, refresh.Value)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "a@x.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "refreshToken")
}

func TestRegisterMissingFields(t *testing.T) {
	app := newTestApp(t)

	body := aliceBody()
	delete(body, "branch")
	resp := postJSON(t, app, "/api/auth/register", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["success"])
}

func TestRegisterDuplicateEmailAnyCase(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", aliceBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dup := aliceBody()
	dup["username"] = "bob2"
	dup["email"] = "A@X.com"
	dup["rollNo"] = "21CS099"
	dup["contactNo"] = "9999999999"
	resp = postJSON(t, app, "/api/auth/register", dup)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["message"], "Email already exists")
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t)
	resp := postJSON(t, app, "/api/auth/register", aliceBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("unknown username", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/login", map[string]interface{}{
			"username": "nobody", "password": "pw123456",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/login", map[string]interface{}{
			"username": "alice", "password": "wrong-pw",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing password", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/login", map[string]interface{}{
			"username": "alice",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestApp(t)

	// Register alice.
	resp := postJSON(t, app, "/api/auth/register", aliceBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Login issues fresh cookies.
	resp = postJSON(t, app, "/api/auth/login", map[string]interface{}{
		"username": "alice", "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access := cookieByName(resp, "accessToken")
	refresh := cookieByName(resp, "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	// /me with the access cookie.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(access)
	meResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, meResp.StatusCode)
	me := decodeBody(t, meResp)
	user := me["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")

	// Logout clears both cookies.
	resp = postJSON(t, app, "/api/auth/logout", nil, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	clearedAccess := cookieByName(resp, "accessToken")
	require.NotNil(t, clearedAccess)
	assert.Empty(t, clearedAccess.Value)

	// Refresh with the logged-out refresh token fails.
	resp = postJSON(t, app, "/api/auth/refresh-token", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The old access token still passes the guard until it expires;
	// access tokens are not server-side revocable.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(access)
	meResp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, meResp.StatusCode)
}

func TestRefreshRotation(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", aliceBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	oldRefresh := cookieByName(resp, "refreshToken")
	require.NotNil(t, oldRefresh)

	// First refresh succeeds and returns a new access token.
	resp = postJSON(t, app, "/api/auth/refresh-token", nil, oldRefresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["accessToken"])
	newRefresh := cookieByName(resp, "refreshToken")
	require.NotNil(t, newRefresh)
	assert.NotEqual(t, oldRefresh.Value, newRefresh.Value)

	// The rotated-out token is dead.
	resp = postJSON(t, app, "/api/auth/refresh-token", nil, oldRefresh)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The current one works.
	resp = postJSON(t, app, "/api/auth/refresh-token", nil, newRefresh)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRefreshWithoutToken(t *testing.T) {
	app := newTestApp(t)
	resp := postJSON(t, app, "/api/auth/refresh-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized request", decodeBody(t, resp)["message"])
}

func TestRefreshFromBody(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", aliceBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	refresh := cookieByName(resp, "refreshToken")
	require.NotNil(t, refresh)

	resp = postJSON(t, app, "/api/auth/refresh-token", map[string]interface{}{
		"refreshToken": refresh.Value,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteAccount(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", aliceBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	access := cookieByName(resp, "accessToken")
	require.NotNil(t, access)

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/delete-account", nil)
	req.AddCookie(access)
	delResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, delResp.StatusCode)

	// Login no longer works for the deleted account.
	resp = postJSON(t, app, "/api/auth/login", map[string]interface{}{
		"username": "alice", "password": "pw123456",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestForgotAndResetPasswordEndpoints(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", aliceBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("forgot requires email", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/forgot-password", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("forgot unknown email", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/forgot-password", map[string]interface{}{
			"email": "nobody@x.com",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("forgot known email", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/forgot-password", map[string]interface{}{
			"email": "a@x.com",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("reset with bad token", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/reset-password", map[string]interface{}{
			"token": "garbage", "newPassword": "newpass99",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid or expired token", decodeBody(t, resp)["message"])
	})
}

func TestChangePasswordEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", aliceBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	access := cookieByName(resp, "accessToken")
	require.NotNil(t, access)

	resp = postJSON(t, app, "/api/auth/change-password", map[string]interface{}{
		"currentPassword": "wrong-pw", "newPassword": "newpass99",
	}, access)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/change-password", map[string]interface{}{
		"currentPassword": "pw123456", "newPassword": "newpass99",
	}, access)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/login", map[string]interface{}{
		"username": "alice", "password": "newpass99",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateProfileIdempotent(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", aliceBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	access := cookieByName(resp, "accessToken")
	require.NotNil(t, access)

	b, err := json.Marshal(aliceBody())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/api/auth/update-profile", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(access)
	updResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, updResp.StatusCode)
}

func TestNotFoundFallback(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["success"])
}
