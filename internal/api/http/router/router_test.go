package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpctx "github.com/dtroode/taskboard-server/internal/api/http/context"
	"github.com/dtroode/taskboard-server/internal/model"
	"github.com/dtroode/taskboard-server/internal/password"
	"github.com/dtroode/taskboard-server/internal/service"
	"github.com/dtroode/taskboard-server/internal/testutil"
	"github.com/dtroode/taskboard-server/internal/token"
)

// memoryStore keeps users, login events and tasks in memory.
type memoryStore struct {
	mu     sync.Mutex
	users  []model.User
	events []model.LoginEvent
	tasks  map[int64]model.Task
	nextID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tasks: make(map[int64]model.Task)}
}

type memoryUsers struct{ *memoryStore }

func (s memoryUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s memoryUsers) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return model.User{}, model.ErrConflict
		}
	}
	s.nextID++
	user.ID = s.nextID
	s.users = append(s.users, user)
	return user, nil
}

type memoryEvents struct{ *memoryStore }

func (s memoryEvents) Create(_ context.Context, event model.LoginEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

type memoryTasks struct{ *memoryStore }

func (s memoryTasks) Create(_ context.Context, task model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	task.ID = s.nextID
	task.CreatedAt = time.Now().Add(time.Duration(task.ID) * time.Millisecond)
	task.UpdatedAt = task.CreatedAt
	s.tasks[task.ID] = task
	return task, nil
}

func (s memoryTasks) List(_ context.Context, f model.TaskFilter) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Task
	for _, t := range s.tasks {
		if t.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s memoryTasks) owned(ownerID, taskID int64) (model.Task, bool) {
	t, ok := s.tasks[taskID]
	return t, ok && t.OwnerID == ownerID
}

func (s memoryTasks) GetByID(_ context.Context, ownerID, taskID int64) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.owned(ownerID, taskID)
	if !ok {
		return model.Task{}, model.ErrNotFound
	}
	return t, nil
}

func (s memoryTasks) Update(_ context.Context, ownerID, taskID int64, c model.TaskChanges) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.owned(ownerID, taskID)
	if !ok {
		return model.ErrNotFound
	}
	if v, ok := c.Title.Get(); ok {
		t.Title = v
	}
	if v, ok := c.Description.Get(); ok {
		t.Description = v
	}
	if v, ok := c.Status.Get(); ok {
		t.Status = v
	}
	s.tasks[taskID] = t
	return nil
}

func (s memoryTasks) Toggle(_ context.Context, ownerID, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.owned(ownerID, taskID)
	if !ok {
		return model.ErrNotFound
	}
	switch t.Status {
	case model.TaskStatusPending:
		t.Status = model.TaskStatusCompleted
	case model.TaskStatusCompleted:
		t.Status = model.TaskStatusPending
	}
	s.tasks[taskID] = t
	return nil
}

func (s memoryTasks) Delete(_ context.Context, ownerID, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owned(ownerID, taskID); !ok {
		return model.ErrNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestServer(t *testing.T) (*echo.Echo, *memoryStore) {
	t.Helper()

	store := newMemoryStore()
	lg := testutil.MakeNoopLogger()

	hasher, err := password.NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	auth := service.NewAuth(memoryUsers{store}, memoryEvents{store}, hasher, token.NewJWT("test-secret", time.Hour), lg)
	tasks := service.NewTask(memoryTasks{store}, lg, 10, 100)

	r := New(Services{Auth: auth, Task: tasks, Pinger: okPinger{}}, httpctx.NewManager(), []string{"*"}, lg)
	return r.Register(), store
}

func do(t *testing.T, e *echo.Echo, method, target, token, body string) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func signupAndLogin(t *testing.T, e *echo.Echo, name, email string) string {
	t.Helper()

	code, _ := do(t, e, http.MethodPost, "/signup", "", fmt.Sprintf(`{"name":%q,"email":%q,"password":"pw123"}`, name, email))
	require.Equal(t, http.StatusCreated, code)

	code, body := do(t, e, http.MethodPost, "/login", "", fmt.Sprintf(`{"email":%q,"password":"pw123"}`, email))
	require.Equal(t, http.StatusOK, code)
	return body["token"].(string)
}

func TestRouter_Scenario(t *testing.T) {
	e, store := newTestServer(t)

	code, body := do(t, e, http.MethodPost, "/signup", "", `{"name":"Ann","email":"ann@example.com","password":"pw123"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User signed up successfully", body["message"])
	assert.EqualValues(t, 1, body["status"])
	assert.NotZero(t, body["userId"])

	code, body = do(t, e, http.MethodPost, "/login", "", `{"email":"ann@example.com","password":"pw123"}`)
	require.Equal(t, http.StatusOK, code)
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)
	assert.Len(t, store.events, 1)

	code, body = do(t, e, http.MethodPost, "/tasks", tok, `{"title":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, code)
	taskID := int64(body["taskId"].(float64))
	taskPath := fmt.Sprintf("/tasks/%d", taskID)

	code, body = do(t, e, http.MethodGet, "/tasks", tok, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["page"])
	assert.EqualValues(t, 10, body["limit"])
	list := body["tasks"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "pending", list[0].(map[string]any)["status"])

	code, _ = do(t, e, http.MethodPatch, taskPath+"/toggle", tok, "")
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, e, http.MethodGet, taskPath, tok, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", body["status"])

	code, body = do(t, e, http.MethodDelete, taskPath, tok, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Task deleted", body["message"])

	code, body = do(t, e, http.MethodGet, taskPath, tok, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Task not found", body["message"])
	assert.EqualValues(t, 0, body["status"])
}

func TestRouter_DuplicateSignup(t *testing.T) {
	e, store := newTestServer(t)

	code, _ := do(t, e, http.MethodPost, "/signup", "", `{"name":"Ann","email":"ann@example.com","password":"first"}`)
	require.Equal(t, http.StatusCreated, code)
	firstHash := store.users[0].PasswordHash

	code, body := do(t, e, http.MethodPost, "/signup", "", `{"name":"Ann2","email":"ann@example.com","password":"second"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email already exists", body["message"])
	require.Len(t, store.users, 1)
	assert.Equal(t, "Ann", store.users[0].Name)
	assert.Equal(t, firstHash, store.users[0].PasswordHash)

	code, _ = do(t, e, http.MethodPost, "/login", "", `{"email":"ann@example.com","password":"second"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_Authentication(t *testing.T) {
	e, _ := newTestServer(t)

	code, body := do(t, e, http.MethodGet, "/tasks", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization token is required", body["message"])

	code, body = do(t, e, http.MethodGet, "/tasks", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired token", body["message"])

	forged := token.NewJWT("other-secret", time.Hour)
	tok, err := forged.GenerateAccessToken(model.Identity{UserID: 1, Email: "x@example.com"})
	require.NoError(t, err)
	code, _ = do(t, e, http.MethodGet, "/tasks", tok, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_Ownership(t *testing.T) {
	e, _ := newTestServer(t)

	annTok := signupAndLogin(t, e, "Ann", "ann@example.com")
	bobTok := signupAndLogin(t, e, "Bob", "bob@example.com")

	code, body := do(t, e, http.MethodPost, "/tasks", annTok, `{"title":"Secret"}`)
	require.Equal(t, http.StatusCreated, code)
	path := fmt.Sprintf("/tasks/%d", int64(body["taskId"].(float64)))

	for _, tc := range []struct{ method, target, body string }{
		{http.MethodGet, path, ""},
		{http.MethodPatch, path, `{"title":"Mine now"}`},
		{http.MethodPatch, path + "/toggle", ""},
		{http.MethodDelete, path, ""},
	} {
		code, _ := do(t, e, tc.method, tc.target, bobTok, tc.body)
		assert.Equal(t, http.StatusNotFound, code, "%s %s", tc.method, tc.target)
	}

	code, body = do(t, e, http.MethodGet, path, annTok, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Secret", body["title"])
	assert.Equal(t, "pending", body["status"])

	code, body = do(t, e, http.MethodGet, "/tasks", bobTok, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["tasks"])
}

func TestRouter_UpdateAndToggle(t *testing.T) {
	e, _ := newTestServer(t)
	tok := signupAndLogin(t, e, "Ann", "ann@example.com")

	code, body := do(t, e, http.MethodPost, "/tasks", tok, `{"title":"Buy milk","description":"2 litres"}`)
	require.Equal(t, http.StatusCreated, code)
	path := fmt.Sprintf("/tasks/%d", int64(body["taskId"].(float64)))

	code, _ = do(t, e, http.MethodPatch, path, tok, `{}`)
	require.Equal(t, http.StatusOK, code)
	_, body = do(t, e, http.MethodGet, path, tok, "")
	assert.Equal(t, "Buy milk", body["title"])
	assert.Equal(t, "2 litres", body["description"])

	code, _ = do(t, e, http.MethodPatch, path, tok, `{"title":null,"status":"completed"}`)
	require.Equal(t, http.StatusOK, code)
	_, body = do(t, e, http.MethodGet, path, tok, "")
	assert.Equal(t, "Buy milk", body["title"])
	assert.Equal(t, "completed", body["status"])

	code, _ = do(t, e, http.MethodPatch, path, tok, `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	do(t, e, http.MethodPatch, path+"/toggle", tok, "")
	do(t, e, http.MethodPatch, path+"/toggle", tok, "")
	_, body = do(t, e, http.MethodGet, path, tok, "")
	assert.Equal(t, "completed", body["status"])

	code, _ = do(t, e, http.MethodGet, "/tasks/not-a-number", tok, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_ListFilters(t *testing.T) {
	e, _ := newTestServer(t)
	tok := signupAndLogin(t, e, "Ann", "ann@example.com")

	for _, title := range []string{"Buy milk", "Walk dog", "Buy bread"} {
		code, _ := do(t, e, http.MethodPost, "/tasks", tok, fmt.Sprintf(`{"title":%q}`, title))
		require.Equal(t, http.StatusCreated, code)
	}

	_, body := do(t, e, http.MethodGet, "/tasks?search=BUY", tok, "")
	titles := func(b map[string]any) []string {
		var out []string
		for _, v := range b["tasks"].([]any) {
			out = append(out, v.(map[string]any)["title"].(string))
		}
		return out
	}
	assert.Equal(t, []string{"Buy bread", "Buy milk"}, titles(body))

	_, body = do(t, e, http.MethodGet, "/tasks?page=2&limit=2", tok, "")
	assert.EqualValues(t, 2, body["page"])
	assert.Equal(t, []string{"Buy milk"}, titles(body))

	_, body = do(t, e, http.MethodGet, "/tasks?status=completed", tok, "")
	assert.Empty(t, titles(body))

	_, body = do(t, e, http.MethodGet, "/tasks?limit=500", tok, "")
	assert.EqualValues(t, 100, body["limit"])
}

func TestRouter_HealthAndCORS(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	code, body := do(t, e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	req = httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
