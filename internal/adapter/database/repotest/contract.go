// Package repotest holds the behaviour every repository adapter must share.
// Adapter test files embed ContractSuite and supply a constructor.
package repotest

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
	"tasktracker/pkg/test/factory"
)

type Repositories struct {
	Users      port.UserRepository
	Categories port.CategoryRepository
	Todos      port.TodoRepository
}

type ContractSuite struct {
	suite.Suite
	NewRepositories func() Repositories

	Repositories
	ctx   context.Context
	alice domain.User
	bob   domain.User
}

func (s *ContractSuite) SetupTest() {
	RegisterTestingT(s.T())

	s.ctx = context.Background()
	s.Repositories = s.NewRepositories()

	s.alice = s.createUser("alice")
	s.bob = s.createUser("bob")
}

func (s *ContractSuite) createUser(username string) domain.User {
	user, err := s.Users.Create(s.ctx, factory.NewUser[domain.User](map[string]any{"Username": username}))
	Expect(err).To(BeNil())
	return user
}

func (s *ContractSuite) createTodo(userID int, title string) domain.Todo {
	todo, err := s.Todos.CreateTodo(s.ctx, userID, domain.Todo{Title: title})
	Expect(err).To(BeNil())
	return todo
}

func ptr[T any](v T) *T { return &v }

func (s *ContractSuite) TestUsers_LookupAndUniqueness() {
	found, err := s.Users.GetByUsername(s.ctx, "alice")
	Expect(err).To(BeNil())
	Expect(found.ID).To(Equal(s.alice.ID))
	Expect(found.Password).ToNot(BeEmpty())

	byID, err := s.Users.GetByID(s.ctx, s.bob.ID)
	Expect(err).To(BeNil())
	Expect(byID.Username).To(Equal("bob"))

	_, err = s.Users.GetByUsername(s.ctx, "carol")
	Expect(err).To(MatchError(domain.ErrNotFoundOrUnauthorized))

	_, err = s.Users.Create(s.ctx, domain.User{Username: "alice", Password: "x"})
	Expect(err).To(MatchError(domain.ErrUsernameTaken))
}

func (s *ContractSuite) TestCreateTodo_RoundTrip() {
	start := time.Now().Truncate(time.Second)
	deadline := time.Date(2030, 1, 2, 15, 4, 0, 0, time.UTC)

	created, err := s.Todos.CreateTodo(s.ctx, s.alice.ID, domain.Todo{
		Title:      "Pay rent",
		Completed:  true,
		Deadline:   &deadline,
		CategoryId: ptr(42),
		Labels:     []string{"home", "money"},
	})

	Expect(err).To(BeNil())
	Expect(created.ID).To(BeNumerically(">", 0))
	Expect(created.UserId).To(Equal(s.alice.ID))
	Expect(created.Completed).To(BeFalse())
	Expect(created.CreatedAt.Before(start)).To(BeFalse())

	todos, err := s.Todos.GetTodos(s.ctx, s.alice.ID)
	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))

	stored := todos[0]
	Expect(stored.ID).To(Equal(created.ID))
	Expect(stored.Title).To(Equal("Pay rent"))
	Expect(stored.Completed).To(BeFalse())
	Expect(stored.Deadline.Equal(deadline)).To(BeTrue())
	Expect(*stored.CategoryId).To(Equal(42))
	Expect(stored.Labels).To(Equal([]string{"home", "money"}))
}

func (s *ContractSuite) TestCreateTodo_DefaultsOptionalFields() {
	created := s.createTodo(s.alice.ID, "Plain")

	Expect(created.Deadline).To(BeNil())
	Expect(created.CategoryId).To(BeNil())
	Expect(created.Labels).ToNot(BeNil())
	Expect(created.Labels).To(BeEmpty())
}

func (s *ContractSuite) TestGetTodos_IsolatedPerUserAndOrderedByID() {
	first := s.createTodo(s.alice.ID, "first")
	s.createTodo(s.bob.ID, "bob's")
	second := s.createTodo(s.alice.ID, "second")

	todos, err := s.Todos.GetTodos(s.ctx, s.alice.ID)
	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(2))
	Expect(todos[0].ID).To(Equal(first.ID))
	Expect(todos[1].ID).To(Equal(second.ID))

	bobTodos, err := s.Todos.GetTodos(s.ctx, s.bob.ID)
	Expect(err).To(BeNil())
	Expect(bobTodos).To(HaveLen(1))
	Expect(bobTodos[0].Title).To(Equal("bob's"))
}

func (s *ContractSuite) TestForeignTodo_IsIndistinguishableFromMissing() {
	todo := s.createTodo(s.alice.ID, "private")
	title := "hijacked"

	_, err := s.Todos.UpdateTodo(s.ctx, todo.ID, s.bob.ID, true)
	Expect(err).To(MatchError(domain.ErrNotFoundOrUnauthorized))

	_, err = s.Todos.UpdateTodoDetails(s.ctx, todo.ID, s.bob.ID, domain.TodoChanges{Title: &title})
	Expect(err).To(MatchError(domain.ErrNotFoundOrUnauthorized))

	_, err = s.Todos.UpdateTodoDetails(s.ctx, todo.ID, s.bob.ID, domain.TodoChanges{})
	Expect(err).To(MatchError(domain.ErrNotFoundOrUnauthorized))

	_, err = s.Todos.UpdateTodo(s.ctx, todo.ID+1000, s.bob.ID, true)
	Expect(err).To(MatchError(domain.ErrNotFoundOrUnauthorized))

	Expect(s.Todos.DeleteTodo(s.ctx, todo.ID, s.bob.ID)).To(Succeed())

	todos, err := s.Todos.GetTodos(s.ctx, s.alice.ID)
	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].Title).To(Equal("private"))
	Expect(todos[0].Completed).To(BeFalse())
}

func (s *ContractSuite) TestUpdateTodo_OnlyTogglesCompleted() {
	deadline := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

	created, err := s.Todos.CreateTodo(s.ctx, s.alice.ID, domain.Todo{
		Title:      "Call mom",
		Deadline:   &deadline,
		CategoryId: ptr(3),
		Labels:     []string{"family"},
	})
	Expect(err).To(BeNil())

	updated, err := s.Todos.UpdateTodo(s.ctx, created.ID, s.alice.ID, true)
	Expect(err).To(BeNil())
	Expect(updated.Completed).To(BeTrue())

	todos, _ := s.Todos.GetTodos(s.ctx, s.alice.ID)
	stored := todos[0]

	Expect(stored.Completed).To(BeTrue())
	Expect(stored.Title).To(Equal(created.Title))
	Expect(stored.Deadline.Equal(*created.Deadline)).To(BeTrue())
	Expect(*stored.CategoryId).To(Equal(3))
	Expect(stored.Labels).To(Equal([]string{"family"}))
	Expect(stored.CreatedAt.Equal(created.CreatedAt)).To(BeTrue())
}

func (s *ContractSuite) TestUpdateTodoDetails_AppliesOnlyPresentFields() {
	deadline := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

	created, err := s.Todos.CreateTodo(s.ctx, s.alice.ID, domain.Todo{
		Title:    "Draft",
		Deadline: &deadline,
		Labels:   []string{"a"},
	})
	Expect(err).To(BeNil())

	s.Todos.UpdateTodo(s.ctx, created.ID, s.alice.ID, true)

	title := "Final"
	updated, err := s.Todos.UpdateTodoDetails(s.ctx, created.ID, s.alice.ID, domain.TodoChanges{
		Title:      &title,
		CategoryId: ptr(7),
	})

	Expect(err).To(BeNil())
	Expect(updated.Title).To(Equal("Final"))
	Expect(*updated.CategoryId).To(Equal(7))
	Expect(updated.Completed).To(BeTrue())
	Expect(updated.Deadline.Equal(deadline)).To(BeTrue())
	Expect(updated.Labels).To(Equal([]string{"a"}))

	relabeled, err := s.Todos.UpdateTodoDetails(s.ctx, created.ID, s.alice.ID, domain.TodoChanges{
		Labels:        []string{"b", "c"},
		SetLabels:     true,
		ClearDeadline: true,
	})

	Expect(err).To(BeNil())
	Expect(relabeled.Labels).To(Equal([]string{"b", "c"}))
	Expect(relabeled.Deadline).To(BeNil())
	Expect(relabeled.Title).To(Equal("Final"))

	unchanged, err := s.Todos.UpdateTodoDetails(s.ctx, created.ID, s.alice.ID, domain.TodoChanges{})
	Expect(err).To(BeNil())
	Expect(unchanged.Title).To(Equal("Final"))
}

func (s *ContractSuite) TestDeleteTodo_IsIdempotent() {
	todo := s.createTodo(s.alice.ID, "temporary")

	Expect(s.Todos.DeleteTodo(s.ctx, todo.ID, s.alice.ID)).To(Succeed())
	Expect(s.Todos.DeleteTodo(s.ctx, todo.ID, s.alice.ID)).To(Succeed())

	todos, err := s.Todos.GetTodos(s.ctx, s.alice.ID)
	Expect(err).To(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *ContractSuite) TestCategories_RoundTripAndOwnership() {
	category, err := s.Categories.CreateCategory(s.ctx, s.alice.ID,
		factory.NewCategory[domain.Category](map[string]any{"Name": "Work", "Color": "#ff0000"}))

	Expect(err).To(BeNil())
	Expect(category.ID).To(BeNumerically(">", 0))
	Expect(category.UserId).To(Equal(s.alice.ID))
	Expect(category.Name).To(Equal("Work"))

	Expect(s.Categories.DeleteCategory(s.ctx, category.ID, s.bob.ID)).To(Succeed())

	categories, err := s.Categories.GetCategories(s.ctx, s.alice.ID)
	Expect(err).To(BeNil())
	Expect(categories).To(HaveLen(1))

	bobCategories, err := s.Categories.GetCategories(s.ctx, s.bob.ID)
	Expect(err).To(BeNil())
	Expect(bobCategories).To(BeEmpty())

	Expect(s.Categories.DeleteCategory(s.ctx, category.ID, s.alice.ID)).To(Succeed())

	categories, err = s.Categories.GetCategories(s.ctx, s.alice.ID)
	Expect(err).To(BeNil())
	Expect(categories).To(BeEmpty())
}

func (s *ContractSuite) TestDeleteCategory_LeavesTodoReferenceDangling() {
	category, err := s.Categories.CreateCategory(s.ctx, s.alice.ID, domain.Category{Name: "Errands", Color: "blue"})
	Expect(err).To(BeNil())

	todo, err := s.Todos.CreateTodo(s.ctx, s.alice.ID, domain.Todo{Title: "Buy milk", CategoryId: &category.ID})
	Expect(err).To(BeNil())

	Expect(s.Categories.DeleteCategory(s.ctx, category.ID, s.alice.ID)).To(Succeed())

	todos, err := s.Todos.GetTodos(s.ctx, s.alice.ID)
	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].ID).To(Equal(todo.ID))
	Expect(*todos[0].CategoryId).To(Equal(category.ID))
}

func (s *ContractSuite) TestCountOverdue() {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	s.Todos.CreateTodo(s.ctx, s.alice.ID, domain.Todo{Title: "late", Deadline: &past})
	s.Todos.CreateTodo(s.ctx, s.bob.ID, domain.Todo{Title: "late too", Deadline: &past})
	s.Todos.CreateTodo(s.ctx, s.alice.ID, domain.Todo{Title: "upcoming", Deadline: &future})
	s.Todos.CreateTodo(s.ctx, s.alice.ID, domain.Todo{Title: "undated"})

	done, _ := s.Todos.CreateTodo(s.ctx, s.alice.ID, domain.Todo{Title: "late but done", Deadline: &past})
	s.Todos.UpdateTodo(s.ctx, done.ID, s.alice.ID, true)

	count, err := s.Todos.CountOverdue(s.ctx, now)

	Expect(err).To(BeNil())
	Expect(count).To(Equal(2))
}

func (s *ContractSuite) TestConcurrentCreates_AssignDistinctIDs() {
	const workers = 20

	var wg sync.WaitGroup
	ids := make(chan int, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Go(func() {
			todo, err := s.Todos.CreateTodo(s.ctx, s.alice.ID, domain.Todo{Title: "parallel"})
			if err != nil {
				errs <- err
				return
			}
			ids <- todo.ID
		})
	}

	wg.Wait()
	close(ids)
	close(errs)

	Expect(errs).To(BeEmpty())

	seen := map[int]bool{}
	for id := range ids {
		seen[id] = true
	}

	Expect(seen).To(HaveLen(workers))
}
