package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-task-manager/internal/config"
	"go-task-manager/internal/event"
	"go-task-manager/internal/handler"
	"go-task-manager/internal/middleware"
	"go-task-manager/internal/model"
	"go-task-manager/internal/router"
	"go-task-manager/internal/service"
)

// memTaskRepo is an in-memory stand-in for the Postgres repository, good
// enough to drive the HTTP surface end to end.
type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]model.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[string]model.Task{}}
}

func (r *memTaskRepo) List(_ context.Context, query model.TaskQuery) ([]model.Task, model.Meta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if query.Status != "" && string(t.Status) != query.Status {
			continue
		}
		if query.Archived != nil && t.Archived != *query.Archived {
			continue
		}
		items = append(items, t)
	}

	total := len(items)
	totalPages := 0
	if total > 0 {
		totalPages = (total + query.Size - 1) / query.Size
	}
	return items, model.Meta{Page: query.Page, Size: query.Size, Total: total, TotalPages: totalPages}, nil
}

func (r *memTaskRepo) FindByID(_ context.Context, id string) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.tasks[id]
	if !exists {
		return model.Task{}, model.ErrTaskNotFound
	}
	return t, nil
}

func (r *memTaskRepo) Create(_ context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t
	return nil
}

func (r *memTaskRepo) Update(_ context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[t.ID]; !exists {
		return model.ErrTaskNotFound
	}
	r.tasks[t.ID] = t
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[id]; !exists {
		return model.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
	Meta    *model.Meta     `json:"meta"`
}

// newTestServer wires the full router with an in-memory task repository and
// two principals: admin/admin-pass with the admin role and reader/reader-pass
// with the user role.
func newTestServer(t *testing.T) (http.Handler, *memTaskRepo) {
	t.Helper()

	usersFile := filepath.Join(t.TempDir(), "users.json")
	writeTestUsers(t, usersFile)

	principals, err := service.NewPrincipalStore(usersFile)
	require.NoError(t, err)

	codec := service.NewTokenCodec("handler-test-signing-secret!")
	sessions := service.NewRefreshTokenStore()
	authService := service.NewAuthService(codec, principals, sessions, 15*time.Minute, time.Hour)

	repo := newMemTaskRepo()
	taskService := service.NewTaskService(repo, event.NewPublisher(nil, ""))

	cfg := &config.Config{
		RequestTimeout:   5 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     0,
		AuthRateLimitRPM: 1000,
	}

	return router.New(cfg,
		middleware.NewAuthMiddleware(authService),
		handler.NewAuthHandler(authService),
		handler.NewTaskHandler(taskService),
	), repo
}

func writeTestUsers(t *testing.T, path string) {
	t.Helper()

	users := make([]model.User, 0, 2)
	for _, u := range []struct{ name, role string }{
		{"admin", "admin"},
		{"reader", "user"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.name+"-pass"), bcrypt.MinCost)
		require.NoError(t, err)
		users = append(users, model.User{Username: u.name, PasswordHash: string(hash), Role: u.role})
	}

	data, err := json.Marshal(users)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func doJSON(t *testing.T, h http.Handler, method string, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doRaw(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var resp envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func loginAs(t *testing.T, h http.Handler, username string) model.TokenPair {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login",
		model.LoginRequest{Username: username, Password: username + "-pass"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	require.True(t, resp.Success)

	var pair model.TokenPair
	require.NoError(t, json.Unmarshal(resp.Data, &pair))
	require.NotEmpty(t, pair.AccessToken)
	return pair
}
