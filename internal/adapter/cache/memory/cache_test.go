package memory

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
)

type CacheSuite struct {
	suite.Suite
	ctx   context.Context
	cache port.CacheRepository
}

func (s *CacheSuite) SetupTest() {
	RegisterTestingT(s.T())
	s.ctx = context.Background()
	s.cache = NewCache(time.Minute)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) TestGet_Miss() {
	_, err := s.cache.Get(s.ctx, "todos:1")

	Expect(err).To(MatchError(domain.ErrCacheMiss))
}

func (s *CacheSuite) TestSetAndGet() {
	value := []byte(`[{"id":1}]`)

	Expect(s.cache.Set(s.ctx, "todos:1", value, time.Minute)).To(Succeed())

	value[0] = 'x'

	got, err := s.cache.Get(s.ctx, "todos:1")
	Expect(err).To(BeNil())
	Expect(string(got)).To(Equal(`[{"id":1}]`))
}

func (s *CacheSuite) TestExpiry() {
	s.cache.Set(s.ctx, "todos:1", []byte("v"), 10*time.Millisecond)

	Eventually(func() error {
		_, err := s.cache.Get(s.ctx, "todos:1")
		return err
	}).WithTimeout(time.Second).Should(MatchError(domain.ErrCacheMiss))
}

func (s *CacheSuite) TestDeleteByPrefix() {
	s.cache.Set(s.ctx, "todos:1:all", []byte("a"), time.Minute)
	s.cache.Set(s.ctx, "todos:1:labels", []byte("b"), time.Minute)
	s.cache.Set(s.ctx, "todos:2:all", []byte("c"), time.Minute)

	Expect(s.cache.DeleteByPrefix(s.ctx, "todos:1:")).To(Succeed())

	_, err := s.cache.Get(s.ctx, "todos:1:all")
	Expect(err).To(MatchError(domain.ErrCacheMiss))

	_, err = s.cache.Get(s.ctx, "todos:1:labels")
	Expect(err).To(MatchError(domain.ErrCacheMiss))

	got, err := s.cache.Get(s.ctx, "todos:2:all")
	Expect(err).To(BeNil())
	Expect(string(got)).To(Equal("c"))
}

func (s *CacheSuite) TestDelete() {
	s.cache.Set(s.ctx, "k", []byte("v"), time.Minute)
	s.cache.Delete(s.ctx, "k")

	_, err := s.cache.Get(s.ctx, "k")
	Expect(err).To(MatchError(domain.ErrCacheMiss))
}
