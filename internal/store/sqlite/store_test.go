package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
)

type recordingObserver struct {
	mu      sync.Mutex
	saved   []string
	removed []record.Record
}

func (o *recordingObserver) OnSaved(_ context.Context, rec record.Record) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.saved = append(o.saved, rec.ID())
}

func (o *recordingObserver) OnRemoved(_ context.Context, rec record.Record) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.removed = append(o.removed, rec)
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "records.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func place(t *testing.T, id, name string) record.Record {
	t.Helper()
	rec, err := record.New("Place", map[string]any{
		"_id":  id,
		"name": name,
		"loc":  map[string]any{"coordinates": []any{2.3, 48.8}},
	}, "")
	require.NoError(t, err)
	return rec
}

func TestSaveAndFindOne(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, place(t, "1", "Cafe")))

	got, err := s.FindOne(ctx, "Place", "1")
	require.NoError(t, err)
	assert.Equal(t, "Place", got.Type())
	assert.Equal(t, "1", got.ID())
	assert.Equal(t, "Cafe", got.Fields()["name"])

	coords, ok := got.Lookup("loc.coordinates")
	require.True(t, ok)
	assert.Equal(t, []any{2.3, 48.8}, coords)
}

func TestSave_Upserts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, place(t, "1", "Cafe")))
	require.NoError(t, s.Save(ctx, place(t, "1", "Bistro")))

	got, err := s.FindOne(ctx, "Place", "1")
	require.NoError(t, err)
	assert.Equal(t, "Bistro", got.Fields()["name"])

	n, err := s.Count(ctx, "Place")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSave_RejectsZeroRecord(t *testing.T) {
	s := openStore(t)
	err := s.Save(context.Background(), record.Record{})
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestFindOne_NotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.FindOne(context.Background(), "Place", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemove(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, place(t, "1", "Cafe")))

	require.NoError(t, s.Remove(ctx, "Place", "1"))

	_, err := s.FindOne(ctx, "Place", "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, "Place", "1"), domain.ErrNotFound)
}

func TestObservers_FireAfterCommit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	places := &recordingObserver{}
	users := &recordingObserver{}
	s.Subscribe("Place", places)
	s.Subscribe("User", users)

	require.NoError(t, s.Save(ctx, place(t, "1", "Cafe")))
	require.NoError(t, s.Save(ctx, place(t, "2", "Bar")))
	require.NoError(t, s.Remove(ctx, "Place", "1"))

	assert.Equal(t, []string{"1", "2"}, places.saved)
	require.Len(t, places.removed, 1)
	assert.Equal(t, "Cafe", places.removed[0].Fields()["name"])
	assert.Empty(t, users.saved)
	assert.Empty(t, users.removed)
}

func TestObservers_NotCalledOnFailedRemove(t *testing.T) {
	s := openStore(t)
	obs := &recordingObserver{}
	s.Subscribe("Place", obs)

	assert.Error(t, s.Remove(context.Background(), "Place", "ghost"))
	assert.Empty(t, obs.removed)
}

func TestStream_OrderedAndScopedToType(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for _, id := range []string{"3", "1", "2"} {
		require.NoError(t, s.Save(ctx, place(t, id, "p"+id)))
	}
	user, err := record.New("User", map[string]any{"_id": "u1"}, "")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, user))

	stream, err := s.Stream(ctx, "Place")
	require.NoError(t, err)
	defer stream.Close()

	var ids []string
	for stream.Next() {
		ids = append(ids, stream.Record().ID())
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestStream_Empty(t *testing.T) {
	s := openStore(t)
	stream, err := s.Stream(context.Background(), "Nothing")
	require.NoError(t, err)
	defer stream.Close()

	assert.False(t, stream.Next())
	assert.NoError(t, stream.Err())
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(MemoryPath, nil)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Save(ctx, place(t, "1", "Cafe")))
	_, err = s.FindOne(ctx, "Place", "1")
	assert.NoError(t, err)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("", nil)
	assert.Error(t, err)
}
