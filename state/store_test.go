package state_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-govuk/questions/journey"
	"github.com/x-govuk/questions/state"
)

var answersJourney = journey.DescriptorFor[*answers]("answers", "personId")

func newID(t *testing.T) journey.InstanceID {
	t.Helper()
	id, ok := journey.CreateNewInstanceID(answersJourney, journey.RouteValues{"personId": "42"})
	require.True(t, ok)
	return id
}

func backends(t *testing.T) map[string]state.Backend {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := state.OpenBadger(state.InMemoryBadgerConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]state.Backend{
		"memory": state.NewMemoryBackend(),
		"file":   state.NewFileBackend(t.TempDir()),
		"redis":  state.NewRedisBackend(client),
		"badger": state.NewBadgerBackend(db),
	}
}

func TestJSONStore_Backends(t *testing.T) {
	ctx := context.Background()

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := state.NewJSONStore(backend, newCodec(t))
			id := newID(t)

			_, err := store.GetState(ctx, id, answersJourney)
			assert.ErrorIs(t, err, state.ErrNotFound)

			path := journey.NewPath(journey.StepFromURL(id.EnsureURLHasKey("/people/42/name")))
			want := state.Entry{State: &answers{Name: "Ada", Age: 36}, Path: path}
			require.NoError(t, store.SetState(ctx, id, answersJourney, want))

			got, err := store.GetState(ctx, id, answersJourney)
			require.NoError(t, err)
			assert.Equal(t, want.State, got.State)
			assert.True(t, want.Path.Equal(got.Path))

			updated := state.Entry{State: &answers{Name: "Ada", Age: 37}, Path: path}
			require.NoError(t, store.SetState(ctx, id, answersJourney, updated))
			got, err = store.GetState(ctx, id, answersJourney)
			require.NoError(t, err)
			assert.Equal(t, 37, got.State.(*answers).Age)

			ids, err := store.Instances(ctx)
			require.NoError(t, err)
			require.Len(t, ids, 1)
			assert.True(t, ids[0].Equal(id))

			raw, err := store.Inspect(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "*github.com/x-govuk/questions/state_test.answers", raw.StateTypeName)
			assert.JSONEq(t, `{"name":"Ada","age":37}`, string(raw.State))

			require.NoError(t, store.DeleteState(ctx, id, answersJourney))
			require.NoError(t, store.DeleteState(ctx, id, answersJourney))
			_, err = store.GetState(ctx, id, answersJourney)
			assert.ErrorIs(t, err, state.ErrNotFound)
		})
	}
}

func TestJSONStore_SetStateUnregisteredType(t *testing.T) {
	ctx := context.Background()
	store := state.NewJSONStore(state.NewMemoryBackend(), newCodec(t))
	id := newID(t)

	err := store.SetState(ctx, id, answersJourney, state.Entry{State: &otherAnswers{}})
	assert.ErrorIs(t, err, state.ErrUnknownStateType)

	_, err = store.GetState(ctx, id, answersJourney)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestJSONStore_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryBackend()
	store := state.NewJSONStore(backend, newCodec(t))
	id := newID(t)

	require.NoError(t, backend.Save(ctx, state.StorageKey(id), []byte("not json")))

	_, err := store.GetState(ctx, id, answersJourney)
	assert.ErrorIs(t, err, state.ErrCorrupt)
	assert.NotErrorIs(t, err, state.ErrNotFound)
}

func TestFileBackend_AtomicLayout(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "nested")
	backend := state.NewFileBackend(root)

	keys, err := backend.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, backend.Save(ctx, "a/b?c=d", []byte("v")))

	files, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ".json", filepath.Ext(files[0].Name()))

	keys, err = backend.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b?c=d"}, keys)
}

func TestRedisBackend_Options(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	backend := state.NewRedisBackend(client, state.WithPrefix("app"), state.WithTTL(time.Hour))
	require.NoError(t, backend.Save(ctx, "k", []byte("v")))

	assert.True(t, mr.Exists("app:k"))
	assert.Equal(t, time.Hour, mr.TTL("app:k"))

	mr.FastForward(2 * time.Hour)
	_, err := backend.Load(ctx, "k")
	assert.ErrorIs(t, err, state.ErrNotFound)

	noExpiry := state.NewRedisBackend(client, state.WithTTL(0))
	require.NoError(t, noExpiry.Save(ctx, "k", []byte("v")))
	assert.Equal(t, time.Duration(0), mr.TTL("govuk-questions:k"))
}

func TestRedisBackend_LoadError(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := state.NewRedisBackend(client)

	mr.Close()

	_, err := backend.Load(ctx, "k")
	assert.ErrorIs(t, err, state.ErrLoadFailed)
	assert.NotErrorIs(t, err, state.ErrNotFound)
}
