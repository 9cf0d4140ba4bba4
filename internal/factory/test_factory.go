package factory

import (
	"time"

	"github.com/hollowpoint-games/accountsync/internal/config"
	"github.com/hollowpoint-games/accountsync/internal/dependencies/mocks"
	"github.com/hollowpoint-games/accountsync/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing: in-memory cache, mocked
// clock and randomness, and the direct transport against serverURL (usually
// an httptest instance of the reference account service).
func NewTestApp(serverURL string) (*TestApp, error) {
	return NewTestAppWithConfig(config.Config{
		ServerURL:       serverURL,
		Transport:       config.TransportDirect,
		CacheBackend:    config.CacheMemory,
		RestoreAttempts: 5,
		RestoreInterval: 5 * time.Millisecond,
		BridgeTimeout:   2 * time.Second,
	})
}

// NewTestAppWithConfig creates a TestApp with explicit configuration.
func NewTestAppWithConfig(cfg config.Config) (*TestApp, error) {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockRandom.QueueString("aaaaaaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbbbbbb", "cccccccccccccccccccc")

	app, err := newWithDependencies(cfg, testutil.NopLogger(), mockClock, mockRandom)
	if err != nil {
		return nil, err
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}, nil
}
