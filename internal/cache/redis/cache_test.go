package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/hollowpoint-games/accountsync/internal/cache"
)

type CacheSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	cache *Cache
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.Namespace = "test"

	s.cache = NewWithClient(client, cfg)
}

func (s *CacheSuite) TearDownTest() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *CacheSuite) TestGetStringDefault() {
	s.Equal("fallback", s.cache.GetString("missing", "fallback"))
}

func (s *CacheSuite) TestBufferedWriteReadsBack() {
	s.cache.SetString(cache.KeyUserID, "u_123")
	s.Equal("u_123", s.cache.GetString(cache.KeyUserID, ""))
}

func (s *CacheSuite) TestWritesReachRedisOnlyOnSave() {
	s.cache.SetString(cache.KeyUserID, "u_123")
	s.False(s.mini.Exists("accountsync:test:" + cache.KeyUserID))

	s.Require().NoError(s.cache.Save())

	v, err := s.mini.Get("accountsync:test:" + cache.KeyUserID)
	s.Require().NoError(err)
	s.Equal("u_123", v)
}

func (s *CacheSuite) TestIntAndBoolRoundTrip() {
	s.cache.SetInt(cache.KeyMoney, 250)
	s.cache.SetBool(cache.KeyGuest, true)
	s.Require().NoError(s.cache.Save())

	s.Equal(250, s.cache.GetInt(cache.KeyMoney, 0))
	s.True(s.cache.GetBool(cache.KeyGuest, false))
}

func (s *CacheSuite) TestDeleteRemovesOnSave() {
	s.cache.SetString(cache.KeyUserID, "u_123")
	s.Require().NoError(s.cache.Save())

	s.cache.Delete(cache.KeyUserID)
	s.Equal("gone", s.cache.GetString(cache.KeyUserID, "gone"))

	s.Require().NoError(s.cache.Save())
	s.False(s.mini.Exists("accountsync:test:" + cache.KeyUserID))
}

func (s *CacheSuite) TestReadsExistingKeys() {
	s.Require().NoError(s.mini.Set("accountsync:test:"+cache.KeyUsername, "Alice"))
	s.Equal("Alice", s.cache.GetString(cache.KeyUsername, ""))
}

func (s *CacheSuite) TestNamespacesIsolateInstalls() {
	other := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), Config{Namespace: "other"})
	defer func() { _ = other.Close() }()

	s.cache.SetString(cache.KeyUserID, "u_mine")
	s.Require().NoError(s.cache.Save())

	s.Equal("", other.GetString(cache.KeyUserID, ""))
}

func (s *CacheSuite) TestSaveRetainsBatchOnFailure() {
	s.cache.SetString(cache.KeyUserID, "u_123")

	s.mini.Close()
	s.Error(s.cache.Save())

	// The buffered write survives the failed flush
	s.Equal("u_123", s.cache.GetString(cache.KeyUserID, ""))
}

func (s *CacheSuite) TestUnreachableStoreReadsAsAbsent() {
	s.mini.Close()
	s.Equal("fallback", s.cache.GetString("anything", "fallback"))
}
