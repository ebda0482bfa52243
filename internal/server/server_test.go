package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/devsearch/internal/config"
	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/internal/jobs"
	"anoa.com/devsearch/internal/server"
	"anoa.com/devsearch/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	t       *testing.T
	handler http.Handler
	db      *gorm.DB
	mailbox *testutil.Mailbox
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mailbox := &testutil.Mailbox{}
	db := testutil.NewDB(t, mailbox)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		AppEnv:                 "test",
		AllowedOrigins:         "http://localhost:3000",
		JWTSecret:              "test-secret",
		JWTTTL:                 time.Hour,
		AnonMessageDailyQuota:  2,
		CloudinaryUploadFolder: "devsearch",
		CleanupSchedule:        "@every 1h",
	}

	srv, err := server.NewServer(cfg, server.Deps{
		DB:           db,
		Redis:        rdb,
		ImageStorage: &testutil.Storage{},
		Scheduler:    jobs.NewScheduler(),
	})
	require.NoError(t, err)

	return &harness{t: t, handler: srv.Handler(), db: db, mailbox: mailbox}
}

func (h *harness) do(method, path string, body any, token string) (int, map[string]any) {
	h.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "203.0.113.7:40000"

	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (h *harness) register(username string) (token string, profileID string) {
	h.t.Helper()
	code, body := h.do(http.MethodPost, "/api/auth/register", map[string]any{
		"first_name": "Name " + username,
		"email":      username + "@example.com",
		"username":   username,
		"password1":  "supersecret",
		"password2":  "supersecret",
	}, "")
	require.Equal(h.t, http.StatusCreated, code, body)
	profile := body["profile"].(map[string]any)
	return body["access_token"].(string), profile["id"].(string)
}

func TestRegisterAndLoginScenario(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(http.MethodPost, "/api/auth/register", map[string]any{
		"first_name": "Alice",
		"email":      "alice@example.com",
		"username":   "Alice",
		"password1":  "supersecret",
		"password2":  "supersecret",
	}, "")
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "User account was created", body["message"])
	assert.Equal(t, "/account/edit", body["redirect"])
	assert.NotEmpty(t, body["access_token"])

	profile := body["profile"].(map[string]any)
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "alice@example.com", profile["email"])
	assert.Equal(t, "Alice", profile["name"])
	require.Len(t, h.mailbox.Sent(), 1)

	code, body = h.do(http.MethodPost, "/api/auth/login", map[string]any{"username": "alice", "password": "supersecret"}, "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "You successfully logged in", body["message"])
	assert.Equal(t, "/account", body["redirect"])
	assert.NotEmpty(t, body["access_token"])

	code, body = h.do(http.MethodPost, "/api/auth/login", map[string]any{"username": "alice", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Password is incorrect!", body["error"])
	assert.NotContains(t, body, "access_token")

	code, body = h.do(http.MethodPost, "/api/auth/login", map[string]any{"username": "nobody", "password": "supersecret"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Username does not exist!", body["error"])
}

func TestLoginHonoursNextAndRedirectsSignedInCallers(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register("bob")

	code, body := h.do(http.MethodPost, "/api/auth/login?next=/projects", map[string]any{"username": "bob", "password": "supersecret"}, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/projects", body["redirect"])

	code, body = h.do(http.MethodPost, "/api/auth/login?next=//evil.example.com", map[string]any{"username": "bob", "password": "supersecret"}, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/account", body["redirect"])

	code, body = h.do(http.MethodPost, "/api/auth/login", map[string]any{"username": "bob", "password": "supersecret"}, token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/profiles", body["redirect"])
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	h.register("carol")

	code, body := h.do(http.MethodPost, "/api/auth/register", map[string]any{
		"first_name": "Other",
		"email":      "other@example.com",
		"username":   "dave",
		"password1":  "supersecret",
		"password2":  "different1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "An error has occurred during registration!", body["error"])
	assert.Contains(t, body["fields"], "password2")

	code, body = h.do(http.MethodPost, "/api/auth/register", map[string]any{
		"first_name": "Other",
		"email":      "other@example.com",
		"username":   "CAROL",
		"password1":  "supersecret",
		"password2":  "supersecret",
	}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["fields"], "username")
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register("erin")

	code, _ := h.do(http.MethodGet, "/api/account", nil, token)
	require.Equal(t, http.StatusOK, code)

	code, body := h.do(http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User was logged out!", body["message"])
	assert.Equal(t, "/login", body["redirect"])

	code, _ = h.do(http.MethodGet, "/api/account", nil, token)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAccountUpdateSyncsUser(t *testing.T) {
	h := newHarness(t)
	token, profileID := h.register("frank")

	code, body := h.do(http.MethodPut, "/api/account", map[string]any{
		"name":        "Frank Castle",
		"email":       "frank@castle.dev",
		"username":    "Punisher",
		"short_intro": "<b>Backend</b> developer",
		"bio":         "Go & SQL",
	}, token)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "/account", body["redirect"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "punisher", data["username"])
	assert.Equal(t, "Backend developer", data["short_intro"])

	var user entity.User
	require.NoError(t, h.db.Joins("JOIN profiles ON profiles.user_id = users.id").Where("profiles.id = ?", profileID).First(&user).Error)
	assert.Equal(t, "Frank Castle", user.FirstName)
	assert.Equal(t, "punisher", user.Username)
	assert.Equal(t, "frank@castle.dev", user.Email)
}

func TestSkillsAndProjectsAreOwnerScoped(t *testing.T) {
	h := newHarness(t)
	ownerToken, _ := h.register("grace")
	otherToken, _ := h.register("heidi")

	code, body := h.do(http.MethodPost, "/api/skills", map[string]any{"name": "Go", "description": "Ten years"}, ownerToken)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Skill was added successfully!", body["message"])
	skillID := body["data"].(map[string]any)["id"].(string)

	code, _ = h.do(http.MethodPut, "/api/skills/"+skillID, map[string]any{"name": "Rust"}, otherToken)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = h.do(http.MethodDelete, "/api/skills/"+skillID, nil, otherToken)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = h.do(http.MethodPost, "/api/projects", map[string]any{
		"title":       "Search engine",
		"description": "Finds developers",
		"new_tags":    "go, search",
	}, ownerToken)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Project was created successfully!", body["message"])
	projectID := body["data"].(map[string]any)["id"].(string)

	code, _ = h.do(http.MethodPut, "/api/projects/"+projectID, map[string]any{"title": "Hijacked"}, otherToken)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = h.do(http.MethodDelete, "/api/projects/"+projectID, nil, otherToken)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = h.do(http.MethodGet, "/api/projects/"+projectID, nil, "")
	require.Equal(t, http.StatusOK, code)
	project := body["data"].(map[string]any)
	assert.Equal(t, "Search engine", project["title"])
	assert.Len(t, project["tags"], 2)

	code, _ = h.do(http.MethodGet, "/api/projects/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReviewsRecountVotes(t *testing.T) {
	h := newHarness(t)
	ownerToken, _ := h.register("ivan")
	firstToken, _ := h.register("judy")
	secondToken, _ := h.register("mallory")

	_, body := h.do(http.MethodPost, "/api/projects", map[string]any{"title": "Vote me"}, ownerToken)
	projectID := body["data"].(map[string]any)["id"].(string)
	path := "/api/projects/" + projectID + "/reviews"

	code, body := h.do(http.MethodPost, path, map[string]any{"value": "up", "body": "great"}, firstToken)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Your review was successfully submitted!", body["message"])
	assert.Equal(t, "/projects/"+projectID, body["redirect"])

	code, body = h.do(http.MethodPost, path, map[string]any{"value": "down"}, secondToken)
	require.Equal(t, http.StatusCreated, code, body)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 2, data["vote_total"])
	assert.EqualValues(t, 50, data["vote_ratio"])

	code, _ = h.do(http.MethodPost, path, map[string]any{"value": "up"}, secondToken)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = h.do(http.MethodPost, path, map[string]any{"value": "up"}, ownerToken)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = h.do(http.MethodPost, path, map[string]any{"value": "sideways"}, firstToken)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["fields"], "value")
}

func TestMessagingFlow(t *testing.T) {
	h := newHarness(t)
	recipientToken, recipientID := h.register("niaj")
	senderToken, _ := h.register("olivia")
	outsiderToken, _ := h.register("peggy")

	code, body := h.do(http.MethodPost, "/api/profiles/"+recipientID+"/messages", map[string]any{
		"name":    "Ignored",
		"email":   "ignored@example.com",
		"subject": "Hello",
		"body":    "Want to pair?",
	}, senderToken)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Your message was successfully sent!", body["message"])
	assert.Equal(t, "/profiles/"+recipientID, body["redirect"])
	sent := body["data"].(map[string]any)
	assert.Equal(t, "Name olivia", sent["name"])
	assert.Equal(t, "olivia@example.com", sent["email"])
	assert.Equal(t, false, sent["is_read"])
	messageID := sent["id"].(string)

	code, body = h.do(http.MethodGet, "/api/inbox", nil, recipientToken)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["unread_count"])

	code, _ = h.do(http.MethodGet, "/api/inbox/"+messageID, nil, outsiderToken)
	assert.Equal(t, http.StatusNotFound, code)

	for i := 0; i < 2; i++ {
		code, body = h.do(http.MethodGet, "/api/inbox/"+messageID, nil, recipientToken)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["is_read"])
	}

	_, body = h.do(http.MethodGet, "/api/inbox", nil, recipientToken)
	assert.EqualValues(t, 0, body["unread_count"])
}

func TestAnonymousMessagesNeedIdentityAndAreRateLimited(t *testing.T) {
	h := newHarness(t)
	_, recipientID := h.register("rupert")
	path := "/api/profiles/" + recipientID + "/messages"

	code, body := h.do(http.MethodPost, path, map[string]any{"body": "hi"}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["fields"], "name")

	anon := map[string]any{"name": "Visitor", "email": "visitor@example.com", "body": "hi"}
	for i := 0; i < 2; i++ {
		code, body = h.do(http.MethodPost, path, anon, "")
		require.Equal(t, http.StatusCreated, code, body)
	}

	code, _ = h.do(http.MethodPost, path, anon, "")
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestDeleteAccountRemovesUser(t *testing.T) {
	h := newHarness(t)
	token, profileID := h.register("sybil")

	code, body := h.do(http.MethodDelete, "/api/account", nil, token)
	require.Equal(t, http.StatusOK, code, body)

	var users, profiles int64
	require.NoError(t, h.db.Model(&entity.User{}).Where("username = ?", "sybil").Count(&users).Error)
	require.NoError(t, h.db.Model(&entity.Profile{}).Where("id = ?", profileID).Count(&profiles).Error)
	assert.Zero(t, users)
	assert.Zero(t, profiles)
}

func TestAdminRoutes(t *testing.T) {
	h := newHarness(t)
	adminToken, _ := h.register("trent")
	userToken, victimID := h.register("victor")

	var admin entity.User
	require.NoError(t, h.db.Where("username = ?", "trent").First(&admin).Error)
	testutil.MakeAdmin(t, h.db, &admin)

	code, _ := h.do(http.MethodGet, "/api/admin/users", nil, userToken)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := h.do(http.MethodGet, "/api/admin/users", nil, adminToken)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 2)

	code, body = h.do(http.MethodPost, "/api/admin/tags", map[string]any{"name": "python"}, adminToken)
	require.Equal(t, http.StatusCreated, code, body)
	tagID := body["id"].(string)

	code, _ = h.do(http.MethodPost, "/api/admin/tags", map[string]any{"name": "python"}, adminToken)
	assert.Equal(t, http.StatusConflict, code)

	code, body = h.do(http.MethodGet, "/api/tags", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)

	code, _ = h.do(http.MethodDelete, "/api/admin/tags/"+tagID, nil, adminToken)
	assert.Equal(t, http.StatusOK, code)

	code, _ = h.do(http.MethodPost, "/api/admin/search/reindex", nil, adminToken)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, _ = h.do(http.MethodDelete, "/api/admin/profiles/"+victimID, nil, adminToken)
	assert.Equal(t, http.StatusOK, code)

	code, _ = h.do(http.MethodGet, "/api/profiles/"+victimID, nil, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPublicListingsAndStats(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register("walter")
	h.register("wendy")
	h.register("xavier")
	h.register("yolanda")

	h.do(http.MethodPost, "/api/projects", map[string]any{"title": "Alpha"}, token)

	code, body := h.do(http.MethodGet, "/api/profiles?page=2", nil, "")
	require.Equal(t, http.StatusOK, code)
	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 2, meta["current_page"])
	assert.EqualValues(t, 2, meta["total_pages"])
	assert.Len(t, body["data"], 1)

	code, body = h.do(http.MethodGet, "/api/profiles?search_query=WEND", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)

	code, body = h.do(http.MethodGet, "/api/stats", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 4, body["total_developers"])
	assert.EqualValues(t, 1, body["total_projects"])
	assert.Len(t, body["top_projects"], 1)

	code, _ = h.do(http.MethodGet, "/api/search?q=alpha", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, _ = h.do(http.MethodGet, "/api/account", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestInboxStreamRequiresAuth(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(http.MethodGet, "/api/inbox/ws", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}
