package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deephaven/mcp-systems-server/internal/config"
	"github.com/deephaven/mcp-systems-server/internal/launch"
	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/worker"
)

func fakeBuilder(sess *worker.FakeSession) Builder {
	return func(ctx context.Context, cfg config.CommunitySessionConfig) (worker.Session, error) {
		return sess, nil
	}
}

func TestCommunityManagerGetUsesBuilder(t *testing.T) {
	fake := worker.NewFakeSession()
	m := NewCommunityManager("community", "local", config.CommunitySessionConfig{Host: "localhost", Port: 10000}, fakeBuilder(fake))

	got, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, fake, got)
	assert.Equal(t, "community:community:local", m.FullName())
}

func TestResolveAuthTokenStrictFailsWhenUnset(t *testing.T) {
	getenv := func(string) (string, bool) { return "", false }
	_, err := ResolveAuthToken(context.Background(), "", "MY_TOKEN", true, getenv)
	require.Error(t, err)
	assert.True(t, mcperr.Is(err, mcperr.KindConfiguration))
}

func TestResolveAuthTokenLenientFallsBackToEmpty(t *testing.T) {
	getenv := func(string) (string, bool) { return "", false }
	token, err := ResolveAuthToken(context.Background(), "", "MY_TOKEN", false, getenv)
	require.NoError(t, err)
	assert.Equal(t, "", token)
}

func TestDynamicCommunityManagerCloseStopsSessionThenSubprocess(t *testing.T) {
	fake := worker.NewFakeSession()
	handle := &launch.Handle{Method: launch.MethodLocal, PID: 0} // PID 0: Stop is a no-op, avoids killing real processes
	m := NewDynamicCommunityManager("s1", handle, config.CommunitySessionConfig{}, fakeBuilder(fake), nil)

	_, err := m.Get(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Close(context.Background()))
	assert.True(t, fake.Closed())
}

func TestFactoryManagerLivenessUsesPing(t *testing.T) {
	f := &fakeFactory{alive: true}
	fm := NewFactoryManager("ent1", config.EnterpriseSystemConfig{}, func(ctx context.Context, cfg config.EnterpriseSystemConfig) (worker.Factory, error) {
		return f, nil
	})
	_, err := fm.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, fm.IsAlive(context.Background()))

	f.alive = false
	assert.False(t, fm.IsAlive(context.Background()))
}

type fakeFactory struct {
	alive bool
}

func (f *fakeFactory) Ping(ctx context.Context) error {
	if f.alive {
		return nil
	}
	return mcperr.New(mcperr.KindConnection, "factory unreachable")
}
func (f *fakeFactory) EnumerateSessions(ctx context.Context) ([]string, error) { return nil, nil }
func (f *fakeFactory) CreateSession(ctx context.Context, name string, params map[string]string) (worker.Session, error) {
	return worker.NewFakeSession(), nil
}
func (f *fakeFactory) Close(ctx context.Context) error { return nil }
