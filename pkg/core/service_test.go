package core_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lintas/pkg/core"
)

// MockRepository implements core.Repository in memory.
// It deliberately does NOT implement core.Indexed or core.Watchable to test the fallbacks.
type MockRepository struct {
	datasets map[string]core.Dataset
	failWith error
	closed   int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		datasets: make(map[string]core.Dataset),
	}
}

func (m *MockRepository) Initialize(ctx context.Context) error { return nil }

func (m *MockRepository) Put(ctx context.Context, d core.Dataset) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.datasets[d.ID] = d
	return nil
}

func (m *MockRepository) Get(ctx context.Context, id string) (core.Dataset, error) {
	if m.failWith != nil {
		return core.Dataset{}, m.failWith
	}
	d, ok := m.datasets[id]
	if !ok {
		return core.Dataset{}, core.ErrNotFound
	}
	return d, nil
}

func (m *MockRepository) List(ctx context.Context) ([]core.Dataset, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []core.Dataset
	for _, d := range m.datasets {
		out = append(out, d)
	}
	// Sort for deterministic tests
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.datasets, id)
	return nil
}

func (m *MockRepository) Close() error {
	m.closed++
	return nil
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 8, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, svc *core.Service) {
	t.Helper()
	ctx := context.Background()
	for _, d := range []core.Dataset{
		{ID: "a", Title: "Volume Kendaraan", Description: "hourly counts", Category: "Lalu Lintas", Year: 2023, UploadDate: day(3)},
		{ID: "b", Title: "Kecelakaan Tol", Description: "incidents on toll roads", Category: "Kecelakaan", Year: 2022, UploadDate: day(1)},
		{ID: "c", Title: "Parkir Kota", Description: "Occupancy of VOLUME lots", Category: "Parkir", Year: 2023, UploadDate: day(2)},
	} {
		_, err := svc.Put(ctx, d)
		require.NoError(t, err)
	}
}

func ids(ds []core.Dataset) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}

func TestService_CRUD(t *testing.T) {
	repo := NewMockRepository()
	svc := core.NewService(repo, nil)
	ctx := context.Background()

	// 1. Put
	id, err := svc.Put(ctx, core.Dataset{ID: "d1", Title: "Volume", Year: 2023})
	require.NoError(t, err)
	assert.Equal(t, "d1", id)

	// 2. Get
	d, found, err := svc.Get(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Volume", d.Title)

	// 3. Replace
	_, err = svc.Put(ctx, core.Dataset{ID: "d1", Title: "Volume v2"})
	require.NoError(t, err)
	d, _, err = svc.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Volume v2", d.Title)
	assert.Zero(t, d.Year)

	// 4. Delete, twice
	require.NoError(t, svc.Delete(ctx, "d1"))
	require.NoError(t, svc.Delete(ctx, "d1"))

	_, found, err = svc.Get(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestService_EmptyID(t *testing.T) {
	svc := core.NewService(NewMockRepository(), nil)
	ctx := context.Background()

	_, err := svc.Put(ctx, core.Dataset{Title: "no id"})
	assert.ErrorIs(t, err, core.ErrInvalidDataset)

	_, _, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, core.ErrInvalidDataset)

	assert.ErrorIs(t, svc.Delete(ctx, ""), core.ErrInvalidDataset)
}

func TestService_StorageErrorsPropagate(t *testing.T) {
	repo := NewMockRepository()
	svc := core.NewService(repo, nil)
	ctx := context.Background()

	repo.failWith = core.Unavailable("open", errors.New("locked"))

	_, err := svc.Put(ctx, core.Dataset{ID: "x"})
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)

	_, found, err := svc.Get(ctx, "x")
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	assert.False(t, found)

	_, err = svc.Search(ctx, "")
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
}

func TestService_Queries(t *testing.T) {
	svc := core.NewService(NewMockRepository(), nil)
	seed(t, svc)
	ctx := context.Background()

	t.Run("GetAll", func(t *testing.T) {
		all, err := svc.GetAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, ids(all))
	})

	t.Run("Search is case-insensitive over title, description and category", func(t *testing.T) {
		got, err := svc.Search(ctx, "volume")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "c"}, ids(got))

		got, err = svc.Search(ctx, "kecelakaan")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"b"}, ids(got))
	})

	t.Run("Search with empty query matches all", func(t *testing.T) {
		got, err := svc.Search(ctx, "")
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("Search with no match is empty", func(t *testing.T) {
		got, err := svc.Search(ctx, "zzz")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("GetByCategory is exact", func(t *testing.T) {
		got, err := svc.GetByCategory(ctx, "Parkir")
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, ids(got))

		got, err = svc.GetByCategory(ctx, "parkir")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("GetByYear", func(t *testing.T) {
		got, err := svc.GetByYear(ctx, 2023)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "c"}, ids(got))

		got, err = svc.GetByYear(ctx, 1999)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("GetByUploadDate is half-open and ordered", func(t *testing.T) {
		got, err := svc.GetByUploadDate(ctx, day(1), day(3))
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c"}, ids(got))

		got, err = svc.GetByUploadDate(ctx, time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "a"}, ids(got))
	})
}

func TestService_WatchUnsupported(t *testing.T) {
	svc := core.NewService(NewMockRepository(), nil)
	_, err := svc.Watch(context.Background(), "**")
	assert.Error(t, err)
}

func TestService_Close(t *testing.T) {
	repo := NewMockRepository()
	svc := core.NewService(repo, nil)

	var hooks int
	svc.OnClose(func() { hooks++ })

	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())

	assert.Equal(t, 1, repo.closed)
	assert.Equal(t, 1, hooks)

	state, ok := svc.State().(core.ServiceState)
	require.True(t, ok)
	assert.True(t, state.Closed)
	assert.False(t, state.Indexed)
	assert.Equal(t, "dataset-service", svc.ComponentType())
}

func TestPaginate(t *testing.T) {
	items := make([]core.Dataset, 5)
	for i := range items {
		items[i].ID = string(rune('a' + i))
	}

	tests := []struct {
		name          string
		page, perPage int
		want          []string
	}{
		{"First page", 1, 2, []string{"a", "b"}},
		{"Last partial page", 3, 2, []string{"e"}},
		{"Past the end", 4, 2, []string{}},
		{"Page zero", 0, 2, []string{}},
		{"Zero per page", 1, 0, []string{}},
		{"Everything", 1, 10, []string{"a", "b", "c", "d", "e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(core.Paginate(items, tt.page, tt.perPage)))
		})
	}
}

func TestSortByUploadDate_TiesByID(t *testing.T) {
	ds := []core.Dataset{
		{ID: "z", UploadDate: day(1)},
		{ID: "a", UploadDate: day(2)},
		{ID: "m", UploadDate: day(1)},
	}
	core.SortByUploadDate(ds)
	assert.Equal(t, []string{"m", "z", "a"}, ids(ds))
}
