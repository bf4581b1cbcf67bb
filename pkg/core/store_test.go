package core_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lintas/pkg/adapters/leveldb"
	"github.com/aretw0/lintas/pkg/adapters/memory"
	"github.com/aretw0/lintas/pkg/core"
)

// adapters runs fn against every repository implementation.
func adapters(t *testing.T, fn func(t *testing.T, svc *core.Service)) {
	t.Helper()
	factories := map[string]func(t *testing.T) core.Repository{
		"mock":   func(t *testing.T) core.Repository { return NewMockRepository() },
		"memory": func(t *testing.T) core.Repository { return memory.NewRepository() },
		"leveldb": func(t *testing.T) core.Repository {
			return leveldb.NewRepository(leveldb.Config{Path: t.TempDir()})
		},
	}
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			require.NoError(t, repo.Initialize(context.Background()))
			svc := core.NewService(repo, nil)
			t.Cleanup(func() { _ = svc.Close() })
			fn(t, svc)
		})
	}
}

func TestStore_Scenario(t *testing.T) {
	adapters(t, func(t *testing.T, svc *core.Service) {
		ctx := context.Background()
		a := core.Dataset{ID: "1", Title: "Jalan Rusak", Category: "Lalu Lintas", Year: 2023}
		b := core.Dataset{ID: "2", Title: "Kecelakaan", Category: "Kecelakaan", Year: 2022}
		for _, d := range []core.Dataset{a, b} {
			_, err := svc.Put(ctx, d)
			require.NoError(t, err)
		}

		got, err := svc.Search(ctx, "jalan")
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, ids(got))

		got, err = svc.GetByCategory(ctx, "Lalu Lintas")
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, ids(got))

		got, err = svc.GetByYear(ctx, 2022)
		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, ids(got))

		require.NoError(t, svc.Delete(ctx, "1"))
		_, found, err := svc.Get(ctx, "1")
		require.NoError(t, err)
		assert.False(t, found)

		got, err = svc.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, ids(got))
	})
}

func TestStore_FullReplacement(t *testing.T) {
	adapters(t, func(t *testing.T, svc *core.Service) {
		ctx := context.Background()
		d1 := core.Dataset{ID: "x", Title: "first", Description: "old", Category: "A", Year: 2020, Payload: core.Payload{"rows": "1"}}
		d2 := core.Dataset{ID: "x", Title: "second", Category: "B", Year: 2021}

		for i := 0; i < 3; i++ {
			_, err := svc.Put(ctx, d1)
			require.NoError(t, err)
		}
		_, err := svc.Put(ctx, d2)
		require.NoError(t, err)

		got, found, err := svc.Get(ctx, "x")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "second", got.Title)
		assert.Empty(t, got.Description, "no field merging")
		assert.Empty(t, got.Payload)

		all, err := svc.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		require.NoError(t, svc.Delete(ctx, "missing"))
		all, err = svc.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestStore_YearMatchesByValue(t *testing.T) {
	adapters(t, func(t *testing.T, svc *core.Service) {
		ctx := context.Background()
		for _, raw := range []string{
			`{"id":"n","title":"numeric","category":"A","year":2023}`,
			`{"id":"f","title":"float","category":"A","year":2023.0}`,
			`{"id":"s","title":"string","category":"A","year":"2023"}`,
			`{"id":"o","title":"other","category":"A","year":2024}`,
		} {
			var d core.Dataset
			require.NoError(t, json.Unmarshal([]byte(raw), &d))
			_, err := svc.Put(ctx, d)
			require.NoError(t, err)
		}

		got, err := svc.GetByYear(ctx, 2023)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"n", "f", "s"}, ids(got))
	})
}

func TestStore_CategoryEqualsScan(t *testing.T) {
	adapters(t, func(t *testing.T, svc *core.Service) {
		ctx := context.Background()
		cats := []string{"Lalu Lintas", "lalu lintas", "Lalu Lintas ", "Parkir", "Lalu Lintas"}
		for i, c := range cats {
			_, err := svc.Put(ctx, core.Dataset{ID: core.NewID("s") + string(rune('a'+i)), Category: c, Year: 2000 + i})
			require.NoError(t, err)
		}

		all, err := svc.GetAll(ctx)
		require.NoError(t, err)
		want := core.Filter(all, func(d core.Dataset) bool { return d.Category == "Lalu Lintas" })

		got, err := svc.GetByCategory(ctx, "Lalu Lintas")
		require.NoError(t, err)
		assert.ElementsMatch(t, ids(want), ids(got))
		assert.Len(t, got, 2)
	})
}

func TestStore_PayloadNamedLikeKnownField(t *testing.T) {
	adapters(t, func(t *testing.T, svc *core.Service) {
		ctx := context.Background()
		_, err := svc.Put(ctx, core.Dataset{ID: "bad", Category: "A", Year: 2023, Payload: core.Payload{"upload_date": "kemarin"}})
		require.NoError(t, err)
		_, err = svc.Put(ctx, core.Dataset{ID: "ok", Title: "kemarin", Category: "A", Year: 2023})
		require.NoError(t, err)

		_, found, err := svc.Get(ctx, "bad")
		require.NoError(t, err)
		assert.True(t, found)

		all, err := svc.GetAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"bad", "ok"}, ids(all))

		got, err := svc.Search(ctx, "kemarin")
		require.NoError(t, err)
		assert.Contains(t, ids(got), "ok")
	})
}
