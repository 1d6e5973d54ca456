package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	memcache "tasktracker/internal/adapter/cache/memory"
	"tasktracker/internal/adapter/database/memory"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
	"tasktracker/internal/core/service"
	"tasktracker/internal/core/telemetry"
	"tasktracker/pkg/logger"
)

// countingTodoRepository counts list reads and can slow them down.
type countingTodoRepository struct {
	port.TodoRepository
	reads atomic.Int32
	delay time.Duration
}

func (r *countingTodoRepository) GetTodos(ctx context.Context, userId int) ([]domain.Todo, error) {
	r.reads.Add(1)
	time.Sleep(r.delay)
	return r.TodoRepository.GetTodos(ctx, userId)
}

type brokenCache struct{}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}
func (brokenCache) Get(context.Context, string) ([]byte, error) { return nil, errors.New("cache down") }
func (brokenCache) Delete(context.Context, string) error         { return errors.New("cache down") }
func (brokenCache) DeleteByPrefix(context.Context, string) error { return errors.New("cache down") }
func (brokenCache) Close() error                                 { return nil }

type TodoServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	repo    *countingTodoRepository
	service port.TodoService
	userID  int
}

func (s *TodoServiceTestSuite) SetupTest() {
	RegisterTestingT(s.T())

	s.ctx = context.Background()
	store := memory.NewStore()
	s.repo = &countingTodoRepository{TodoRepository: memory.NewTodoRepository(store)}
	s.service = s.newService(memcache.NewCache(time.Minute))

	user, err := memory.NewUserRepository(store).Create(s.ctx, domain.User{Username: "alice", Password: "x"})
	Expect(err).To(BeNil())
	s.userID = user.ID
}

func (s *TodoServiceTestSuite) newService(cache port.CacheRepository) port.TodoService {
	metrics := telemetry.NewNopMetrics()
	log := logger.NewNop()
	lists := service.NewListCache[domain.Todo](cache, "todos", time.Minute, metrics, log)

	return service.NewTodoService(s.repo, lists, metrics, log)
}

func TestTodoServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TodoServiceTestSuite))
}

func (s *TodoServiceTestSuite) TestCreateTodo_StampsDefaults() {
	before := time.Now().UTC().Add(-time.Second)
	deadline := time.Date(2030, 1, 1, 9, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	todo, err := s.service.CreateTodo(s.ctx, s.userID, domain.Todo{
		Title:     "Write report",
		Completed: true,
		Deadline:  &deadline,
		CreatedAt: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	Expect(err).To(BeNil())
	Expect(todo.Completed).To(BeFalse())
	Expect(todo.UserId).To(Equal(s.userID))
	Expect(todo.CreatedAt.After(before)).To(BeTrue())
	Expect(todo.Deadline.Location()).To(Equal(time.UTC))
	Expect(todo.Deadline.Equal(deadline)).To(BeTrue())
	Expect(todo.Labels).To(Equal([]string{}))
}

func (s *TodoServiceTestSuite) TestGetTodos_ServedFromCacheUntilWrite() {
	s.service.CreateTodo(s.ctx, s.userID, domain.Todo{Title: "one"})

	todos, err := s.service.GetTodos(s.ctx, s.userID)
	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))

	todos, err = s.service.GetTodos(s.ctx, s.userID)
	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))
	Expect(s.repo.reads.Load()).To(Equal(int32(1)))

	s.service.CreateTodo(s.ctx, s.userID, domain.Todo{Title: "two"})

	todos, err = s.service.GetTodos(s.ctx, s.userID)
	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(2))
	Expect(s.repo.reads.Load()).To(Equal(int32(2)))
}

func (s *TodoServiceTestSuite) TestGetTodos_CachedListIsIndependentCopy() {
	s.service.CreateTodo(s.ctx, s.userID, domain.Todo{Title: "one", Labels: []string{"a"}})

	first, _ := s.service.GetTodos(s.ctx, s.userID)
	first[0].Labels[0] = "mutated"
	first[0].Title = "mutated"

	second, _ := s.service.GetTodos(s.ctx, s.userID)

	Expect(second[0].Title).To(Equal("one"))
	Expect(second[0].Labels).To(Equal([]string{"a"}))
}

func (s *TodoServiceTestSuite) TestWritesInvalidateList() {
	todo, _ := s.service.CreateTodo(s.ctx, s.userID, domain.Todo{Title: "one"})
	s.service.GetTodos(s.ctx, s.userID)

	_, err := s.service.UpdateTodo(s.ctx, todo.ID, s.userID, true)
	Expect(err).To(BeNil())

	todos, _ := s.service.GetTodos(s.ctx, s.userID)
	Expect(todos[0].Completed).To(BeTrue())

	title := "renamed"
	_, err = s.service.UpdateTodoDetails(s.ctx, todo.ID, s.userID, domain.TodoChanges{Title: &title})
	Expect(err).To(BeNil())

	todos, _ = s.service.GetTodos(s.ctx, s.userID)
	Expect(todos[0].Title).To(Equal("renamed"))

	Expect(s.service.DeleteTodo(s.ctx, todo.ID, s.userID)).To(Succeed())

	todos, _ = s.service.GetTodos(s.ctx, s.userID)
	Expect(todos).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestUpdateTodo_ForeignIsNotFound() {
	todo, _ := s.service.CreateTodo(s.ctx, s.userID, domain.Todo{Title: "mine"})

	_, err := s.service.UpdateTodo(s.ctx, todo.ID, s.userID+1, true)

	Expect(errors.Is(err, domain.ErrNotFoundOrUnauthorized)).To(BeTrue())
}

func (s *TodoServiceTestSuite) TestGetTodos_CoalescesConcurrentMisses() {
	const workers = 10

	s.service.CreateTodo(s.ctx, s.userID, domain.Todo{Title: "one"})
	s.repo.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Go(func() {
			todos, err := s.service.GetTodos(s.ctx, s.userID)
			if err == nil && len(todos) != 1 {
				err = errors.New("unexpected list length")
			}
			errs <- err
		})
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		Expect(err).To(BeNil())
	}

	Expect(s.repo.reads.Load()).To(BeNumerically("<", workers))
}

func (s *TodoServiceTestSuite) TestGetTodos_CacheFailureFallsBackToRepository() {
	svc := s.newService(brokenCache{})

	_, err := svc.CreateTodo(s.ctx, s.userID, domain.Todo{Title: "one"})
	Expect(err).To(BeNil())

	todos, err := svc.GetTodos(s.ctx, s.userID)
	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))
}

func (s *TodoServiceTestSuite) TestGetTodos_WithoutCache() {
	svc := s.newService(nil)

	svc.CreateTodo(s.ctx, s.userID, domain.Todo{Title: "one"})
	svc.GetTodos(s.ctx, s.userID)
	todos, err := svc.GetTodos(s.ctx, s.userID)

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))
	Expect(s.repo.reads.Load()).To(Equal(int32(2)))
}

func (s *TodoServiceTestSuite) TestOverdueCount() {
	past := time.Now().Add(-time.Hour)

	s.service.CreateTodo(s.ctx, s.userID, domain.Todo{Title: "late", Deadline: &past})
	s.service.CreateTodo(s.ctx, s.userID, domain.Todo{Title: "undated"})

	count, err := s.service.OverdueCount(s.ctx, time.Now())

	Expect(err).To(BeNil())
	Expect(count).To(Equal(1))
}
