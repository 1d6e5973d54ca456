package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"tasktracker/internal/adapter/database/memory"
	"tasktracker/internal/adapter/http/handler"
	"tasktracker/internal/adapter/http/middleware"
	"tasktracker/internal/adapter/http/routes"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/model/response"
	"tasktracker/internal/core/port"
	"tasktracker/internal/core/service"
	"tasktracker/internal/core/telemetry"
	"tasktracker/pkg/auth"
	"tasktracker/pkg/config"
	"tasktracker/pkg/logger"
)

type APISuite struct {
	suite.Suite
	Router     *gin.Engine
	Tokens     port.TokenIssuer
	Categories port.CategoryRepository
	Todos      port.TodoRepository
	Checks     map[string]port.Pinger
}

type failingPinger struct{}

func (failingPinger) PingContext(ctx context.Context) error {
	return domain.NewStorageError("ping", context.DeadlineExceeded)
}

func TestAPISuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	RegisterTestingT(s.T())
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	metrics := telemetry.NewNopMetrics()
	log := logger.NewNop()

	users := memory.NewUserRepository(store)
	s.Categories = memory.NewCategoryRepository(store)
	s.Todos = memory.NewTodoRepository(store)
	s.Tokens = auth.NewJWT("test-secret", time.Hour)
	s.Checks = map[string]port.Pinger{}

	authSvc := service.NewAuthService(users, metrics, log)
	categorySvc := service.NewCategoryService(s.Categories, nil, metrics, log)
	todoSvc := service.NewTodoService(s.Todos, nil, metrics, log)

	cfg := config.GetDefaultConfig()
	cfg.RateLimitEnabled = false

	s.Router = routes.SetupRouter(routes.HandlersConfig{
		AuthHandler:     handler.NewAuthHandler(authSvc, s.Tokens, false, 3600),
		CategoryHandler: handler.NewCategoryHandler(categorySvc),
		TodoHandler:     handler.NewTodoHandler(todoSvc, categorySvc),
		HealthHandler:   handler.NewHealthHandler(s.Checks),
	}, s.Tokens, metrics, log, cfg)
}

func (s *APISuite) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var payload bytes.Buffer

	if body != nil {
		json.NewEncoder(&payload).Encode(body)
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	return rr
}

func (s *APISuite) register(username string) response.UserResponse {
	rr := s.request(http.MethodPost, "/api/register", map[string]string{
		"username": username,
		"password": "secret123",
	}, "")

	Expect(rr.Code).To(Equal(http.StatusCreated))

	var user response.UserResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &user)).To(Succeed())

	return user
}

func (s *APISuite) createTodo(token string, body map[string]any) domain.Todo {
	rr := s.request(http.MethodPost, "/api/todos", body, token)

	Expect(rr.Code).To(Equal(http.StatusCreated))

	var todo domain.Todo
	Expect(json.Unmarshal(rr.Body.Bytes(), &todo)).To(Succeed())

	return todo
}

func decodeError(rr *httptest.ResponseRecorder) response.ErrorResponse {
	var body response.ErrorResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())

	return body
}

func (s *APISuite) TestRegisterReturnsTokenAndSessionCookie() {
	rr := s.request(http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, "")

	Expect(rr.Code).To(Equal(http.StatusCreated))

	var user response.UserResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &user)).To(Succeed())
	Expect(user.ID).To(BeNumerically(">", 0))
	Expect(user.Username).To(Equal("alice"))
	Expect(user.Token).NotTo(BeEmpty())

	userId, err := s.Tokens.VerifyToken(user.Token)
	Expect(err).NotTo(HaveOccurred())
	Expect(userId).To(Equal(user.ID))

	cookies := rr.Result().Cookies()
	Expect(cookies).To(HaveLen(1))
	Expect(cookies[0].Name).To(Equal(middleware.SessionCookieName))
	Expect(cookies[0].Value).To(Equal(user.Token))
	Expect(cookies[0].HttpOnly).To(BeTrue())
}

func (s *APISuite) TestRegisterRejectsDuplicateUsername() {
	s.register("alice")

	rr := s.request(http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
		"password": "other",
	}, "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decodeError(rr).Error.Errors[0].Field).To(Equal("username"))
}

func (s *APISuite) TestRegisterRequiresCredentials() {
	rr := s.request(http.MethodPost, "/api/register", map[string]string{"username": "alice"}, "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	body := decodeError(rr)
	Expect(body.Error.Code).To(Equal("VALIDATION_ERROR"))
	Expect(body.Error.Errors[0].Field).To(Equal("password"))
}

func (s *APISuite) TestLogin() {
	s.register("alice")

	rr := s.request(http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, "")

	Expect(rr.Code).To(Equal(http.StatusOK))

	var user response.UserResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &user)).To(Succeed())
	Expect(user.Token).NotTo(BeEmpty())
}

func (s *APISuite) TestLoginWithWrongPasswordOrUnknownUser() {
	s.register("alice")

	wrong := s.request(http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "nope",
	}, "")
	unknown := s.request(http.MethodPost, "/api/login", map[string]string{
		"username": "mallory",
		"password": "secret123",
	}, "")

	Expect(wrong.Code).To(Equal(http.StatusUnauthorized))
	Expect(unknown.Code).To(Equal(http.StatusUnauthorized))
	Expect(wrong.Body.String()).To(Equal(unknown.Body.String()))
}

func (s *APISuite) TestCurrentUserWithBearerOrCookie() {
	user := s.register("alice")

	rr := s.request(http.MethodGet, "/api/user", nil, user.Token)
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(ContainSubstring(`"username":"alice"`))

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: user.Token})

	cookieRR := httptest.NewRecorder()
	s.Router.ServeHTTP(cookieRR, req)

	Expect(cookieRR.Code).To(Equal(http.StatusOK))
}

func (s *APISuite) TestProtectedRoutesRequireToken() {
	Expect(s.request(http.MethodGet, "/api/user", nil, "").Code).To(Equal(http.StatusUnauthorized))
	Expect(s.request(http.MethodGet, "/api/todos", nil, "").Code).To(Equal(http.StatusUnauthorized))
	Expect(s.request(http.MethodGet, "/api/todos", nil, "not-a-token").Code).To(Equal(http.StatusUnauthorized))
}

func (s *APISuite) TestCurrentUserForDeletedAccountIsUnauthorized() {
	token, err := s.Tokens.CreateToken(999)
	Expect(err).NotTo(HaveOccurred())

	Expect(s.request(http.MethodGet, "/api/user", nil, token).Code).To(Equal(http.StatusUnauthorized))
}

func (s *APISuite) TestLogoutClearsCookie() {
	rr := s.request(http.MethodPost, "/api/logout", nil, "")

	Expect(rr.Code).To(Equal(http.StatusOK))

	cookies := rr.Result().Cookies()
	Expect(cookies).To(HaveLen(1))
	Expect(cookies[0].Value).To(BeEmpty())
	Expect(cookies[0].MaxAge).To(BeNumerically("<", 0))
}

func (s *APISuite) TestCreateTodo() {
	user := s.register("alice")

	todo := s.createTodo(user.Token, map[string]any{
		"title":    "Write report",
		"deadline": "2030-01-02",
		"labels":   []string{"work"},
	})

	Expect(todo.ID).To(BeNumerically(">", 0))
	Expect(todo.UserId).To(Equal(user.ID))
	Expect(todo.Completed).To(BeFalse())
	Expect(todo.Labels).To(Equal([]string{"work"}))
	Expect(todo.Deadline).NotTo(BeNil())
	Expect(todo.Deadline.Equal(time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC))).To(BeTrue())
}

func (s *APISuite) TestCreateTodoValidation() {
	user := s.register("alice")

	rr := s.request(http.MethodPost, "/api/todos", map[string]any{"deadline": "tomorrow"}, user.Token)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	fields := []string{}

	for _, e := range decodeError(rr).Error.Errors {
		fields = append(fields, e.Field)
	}

	Expect(fields).To(ConsistOf("title", "deadline"))
}

func (s *APISuite) TestCreateTodoRejectsBlankTitle() {
	user := s.register("alice")

	rr := s.request(http.MethodPost, "/api/todos", map[string]any{"title": "   "}, user.Token)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decodeError(rr).Error.Errors[0].Field).To(Equal("title"))

	list := s.request(http.MethodGet, "/api/todos", nil, user.Token)
	Expect(list.Body.String()).To(Equal("[]"))
}

func (s *APISuite) TestCreateTodoRejectsMalformedJSON() {
	user := s.register("alice")

	req := httptest.NewRequest(http.MethodPost, "/api/todos", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+user.Token)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
}

func (s *APISuite) TestGetTodosFiltersAndSorts() {
	user := s.register("alice")

	s.createTodo(user.Token, map[string]any{"title": "banana", "labels": []string{"home"}})
	s.createTodo(user.Token, map[string]any{"title": "apple", "labels": []string{"work"}})
	s.createTodo(user.Token, map[string]any{"title": "cherry", "labels": []string{"work"}})

	rr := s.request(http.MethodGet, "/api/todos?label=work&sortBy=title&sortDirection=desc", nil, user.Token)

	Expect(rr.Code).To(Equal(http.StatusOK))

	var todos []response.TodoResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &todos)).To(Succeed())
	Expect(todos).To(HaveLen(2))
	Expect(todos[0].Title).To(Equal("cherry"))
	Expect(todos[1].Title).To(Equal("apple"))
}

func (s *APISuite) TestGetTodosRejectsUnknownSort() {
	user := s.register("alice")

	rr := s.request(http.MethodGet, "/api/todos?sortBy=priority", nil, user.Token)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decodeError(rr).Error.Errors[0].Field).To(Equal("sortBy"))
}

func (s *APISuite) TestGetTodosResolvesCategory() {
	user := s.register("alice")

	category, err := s.Categories.CreateCategory(context.Background(), user.ID, domain.Category{Name: "Work", Color: "#f00"})
	Expect(err).NotTo(HaveOccurred())

	s.createTodo(user.Token, map[string]any{"title": "filed", "categoryId": category.ID})
	s.createTodo(user.Token, map[string]any{"title": "dangling", "categoryId": category.ID + 100})

	rr := s.request(http.MethodGet, "/api/todos?sortBy=title", nil, user.Token)

	var todos []response.TodoResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &todos)).To(Succeed())
	Expect(todos).To(HaveLen(2))

	Expect(todos[0].Title).To(Equal("dangling"))
	Expect(todos[0].Category).To(BeNil())
	Expect(*todos[0].CategoryId).To(Equal(category.ID + 100))

	Expect(todos[1].Category).NotTo(BeNil())
	Expect(todos[1].Category.Name).To(Equal("Work"))
}

func (s *APISuite) TestGetTodosIsolatesUsers() {
	alice := s.register("alice")
	bob := s.register("bob")

	s.createTodo(alice.Token, map[string]any{"title": "mine"})

	rr := s.request(http.MethodGet, "/api/todos", nil, bob.Token)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(Equal("[]"))
}

func (s *APISuite) TestGetLabels() {
	user := s.register("alice")

	s.createTodo(user.Token, map[string]any{"title": "a", "labels": []string{"work", "urgent"}})
	s.createTodo(user.Token, map[string]any{"title": "b", "labels": []string{"work"}})

	rr := s.request(http.MethodGet, "/api/todos/labels", nil, user.Token)

	Expect(rr.Code).To(Equal(http.StatusOK))

	var labels []string
	Expect(json.Unmarshal(rr.Body.Bytes(), &labels)).To(Succeed())
	Expect(labels).To(Equal([]string{"urgent", "work"}))
}

func (s *APISuite) TestUpdateTodoCompleted() {
	user := s.register("alice")
	todo := s.createTodo(user.Token, map[string]any{"title": "finish"})

	rr := s.request(http.MethodPatch, "/api/todos/"+strconv.Itoa(todo.ID), map[string]any{"completed": true}, user.Token)

	Expect(rr.Code).To(Equal(http.StatusOK))

	var updated domain.Todo
	Expect(json.Unmarshal(rr.Body.Bytes(), &updated)).To(Succeed())
	Expect(updated.Completed).To(BeTrue())
	Expect(updated.Title).To(Equal("finish"))
}

func (s *APISuite) TestUpdateTodoRequiresCompleted() {
	user := s.register("alice")
	todo := s.createTodo(user.Token, map[string]any{"title": "finish"})

	rr := s.request(http.MethodPatch, "/api/todos/"+strconv.Itoa(todo.ID), map[string]any{}, user.Token)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decodeError(rr).Error.Errors[0].Field).To(Equal("completed"))
}

func (s *APISuite) TestForeignTodoLooksMissing() {
	alice := s.register("alice")
	bob := s.register("bob")
	todo := s.createTodo(alice.Token, map[string]any{"title": "private"})

	foreign := s.request(http.MethodPatch, "/api/todos/"+strconv.Itoa(todo.ID), map[string]any{"completed": true}, bob.Token)
	missing := s.request(http.MethodPatch, "/api/todos/9999", map[string]any{"completed": true}, bob.Token)

	Expect(foreign.Code).To(Equal(http.StatusNotFound))
	Expect(missing.Code).To(Equal(http.StatusNotFound))
	Expect(foreign.Body.String()).To(Equal(missing.Body.String()))

	details := s.request(http.MethodPatch, "/api/todos/"+strconv.Itoa(todo.ID)+"/details", map[string]any{"title": "mine now"}, bob.Token)
	Expect(details.Code).To(Equal(http.StatusNotFound))

	stored, err := s.Todos.GetTodos(context.Background(), alice.ID)
	Expect(err).NotTo(HaveOccurred())
	Expect(stored[0].Completed).To(BeFalse())
	Expect(stored[0].Title).To(Equal("private"))
}

func (s *APISuite) TestUpdateTodoDetails() {
	user := s.register("alice")
	todo := s.createTodo(user.Token, map[string]any{
		"title":    "draft",
		"deadline": "2030-01-02",
		"labels":   []string{"work"},
	})

	rr := s.request(http.MethodPatch, "/api/todos/"+strconv.Itoa(todo.ID)+"/details", map[string]any{
		"title":    "final",
		"deadline": "",
	}, user.Token)

	Expect(rr.Code).To(Equal(http.StatusOK))

	var updated domain.Todo
	Expect(json.Unmarshal(rr.Body.Bytes(), &updated)).To(Succeed())
	Expect(updated.Title).To(Equal("final"))
	Expect(updated.Deadline).To(BeNil())
	Expect(updated.Labels).To(Equal([]string{"work"}))
}

func (s *APISuite) TestUpdateTodoDetailsRejectsEmptyTitle() {
	user := s.register("alice")
	todo := s.createTodo(user.Token, map[string]any{"title": "draft"})

	rr := s.request(http.MethodPatch, "/api/todos/"+strconv.Itoa(todo.ID)+"/details", map[string]any{"title": ""}, user.Token)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decodeError(rr).Error.Errors[0].Field).To(Equal("title"))
}

func (s *APISuite) TestDeleteTodoIsIdempotent() {
	user := s.register("alice")
	todo := s.createTodo(user.Token, map[string]any{"title": "gone"})

	Expect(s.request(http.MethodDelete, "/api/todos/"+strconv.Itoa(todo.ID), nil, user.Token).Code).To(Equal(http.StatusNoContent))
	Expect(s.request(http.MethodDelete, "/api/todos/"+strconv.Itoa(todo.ID), nil, user.Token).Code).To(Equal(http.StatusNoContent))

	rr := s.request(http.MethodGet, "/api/todos", nil, user.Token)
	Expect(rr.Body.String()).To(Equal("[]"))
}

func (s *APISuite) TestInvalidIDParam() {
	user := s.register("alice")

	rr := s.request(http.MethodDelete, "/api/todos/abc", nil, user.Token)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decodeError(rr).Error.Errors[0].Field).To(Equal("id"))
}

func (s *APISuite) TestCategories() {
	user := s.register("alice")

	rr := s.request(http.MethodPost, "/api/categories", map[string]string{"name": "Home", "color": "#0f0"}, user.Token)
	Expect(rr.Code).To(Equal(http.StatusCreated))

	var category domain.Category
	Expect(json.Unmarshal(rr.Body.Bytes(), &category)).To(Succeed())
	Expect(category.Name).To(Equal("Home"))

	list := s.request(http.MethodGet, "/api/categories", nil, user.Token)
	Expect(list.Code).To(Equal(http.StatusOK))
	Expect(list.Body.String()).To(ContainSubstring(`"name":"Home"`))

	Expect(s.request(http.MethodDelete, "/api/categories/"+strconv.Itoa(category.ID), nil, user.Token).Code).To(Equal(http.StatusNoContent))

	empty := s.request(http.MethodGet, "/api/categories", nil, user.Token)
	Expect(empty.Body.String()).To(Equal("[]"))
}

func (s *APISuite) TestCreateCategoryValidation() {
	user := s.register("alice")

	rr := s.request(http.MethodPost, "/api/categories", map[string]string{"name": "Home"}, user.Token)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decodeError(rr).Error.Errors[0].Field).To(Equal("color"))
}

func (s *APISuite) TestHealthAndReady() {
	health := s.request(http.MethodGet, "/health", nil, "")
	Expect(health.Code).To(Equal(http.StatusOK))
	Expect(health.Body.String()).To(ContainSubstring(`"status":"ok"`))

	Expect(s.request(http.MethodGet, "/ready", nil, "").Code).To(Equal(http.StatusOK))

	s.Checks["database"] = failingPinger{}

	rr := s.request(http.MethodGet, "/ready", nil, "")
	Expect(rr.Code).To(Equal(http.StatusServiceUnavailable))

	var body response.HealthResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
	Expect(body.Checks).To(HaveKeyWithValue("database", "unavailable"))
}

func (s *APISuite) TestRequestIDIsEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Header().Get("X-Request-ID")).To(Equal("req-123"))
}
