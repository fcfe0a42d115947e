package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"task_tracker/internal/models"
	"task_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerToken string
	registerErr   error
	loginToken    string
	loginErr      error
	parseUser     string
	parseErr      error

	lastRegister   [3]string
	lastLogin      [2]string
	lastParseToken string
}

func (m *mockAuth) Register(_ context.Context, username, email, password string) (string, error) {
	m.lastRegister = [3]string{username, email, password}
	return m.registerToken, m.registerErr
}

func (m *mockAuth) Login(_ context.Context, username, password string) (string, error) {
	m.lastLogin = [2]string{username, password}
	return m.loginToken, m.loginErr
}

func (m *mockAuth) ParseToken(_ context.Context, token string) (string, error) {
	m.lastParseToken = token
	return m.parseUser, m.parseErr
}

type mockTasks struct {
	task  models.Task
	tasks []models.Task
	err   error

	lastOwner string
	lastID    int64
	lastPatch models.TaskPatch
	lastTitle string
	lastDesc  string
}

func (m *mockTasks) CreateTask(_ context.Context, owner, title, description string) (models.Task, error) {
	m.lastOwner, m.lastTitle, m.lastDesc = owner, title, description
	return m.task, m.err
}

func (m *mockTasks) GetTask(_ context.Context, id int64, owner string) (models.Task, error) {
	m.lastID, m.lastOwner = id, owner
	return m.task, m.err
}

func (m *mockTasks) ListTasks(_ context.Context, owner string) ([]models.Task, error) {
	m.lastOwner = owner
	return m.tasks, m.err
}

func (m *mockTasks) UpdateTask(_ context.Context, id int64, owner string, p models.TaskPatch) (models.Task, error) {
	m.lastID, m.lastOwner, m.lastPatch = id, owner, p
	return m.task, m.err
}

func (m *mockTasks) DeleteTask(_ context.Context, id int64, owner string) error {
	m.lastID, m.lastOwner = id, owner
	return m.err
}

type mockActivity struct {
	resp      []models.TaskEvent
	err       error
	lastOwner string
	lastF     service.LogFilter

	mu     sync.Mutex
	feed   chan models.TaskEvent
	closed bool
}

func (m *mockActivity) ListEvents(_ context.Context, owner string, f service.LogFilter) ([]models.TaskEvent, error) {
	m.lastOwner, m.lastF = owner, f
	return m.resp, m.err
}

func (m *mockActivity) Subscribe(string) (<-chan models.TaskEvent, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.feed == nil {
		m.feed = make(chan models.TaskEvent, 8)
	}
	return m.feed, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.closed = true
	}
}

func (m *mockActivity) cancelled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, nil, nil).InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func doRequest(r http.Handler, method, path, body string, hdr http.Header) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range hdr {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
