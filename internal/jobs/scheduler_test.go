package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	urls map[string]struct{}
	err  error
}

func (l stubLister) ListAllURLs(context.Context) (map[string]struct{}, error) {
	return l.urls, l.err
}

type stubSweeper struct {
	keys      []string
	removed   []string
	removeErr map[string]error
}

func (s *stubSweeper) ListKeys(context.Context) ([]string, error) {
	return s.keys, nil
}

func (s *stubSweeper) Remove(_ context.Context, key string) error {
	if err := s.removeErr[key]; err != nil {
		return err
	}
	s.removed = append(s.removed, key)
	return nil
}

func (s *stubSweeper) PublicURL(key string) string {
	return "https://backend.example.com/storage/v1/object/public/gallery-images/" + key
}

func TestSweepOrphans(t *testing.T) {
	t.Run("removes only unreferenced blobs", func(t *testing.T) {
		sweeper := &stubSweeper{keys: []string{"kept.png", "orphan-1.png", "orphan-2.jpg"}}
		lister := stubLister{urls: map[string]struct{}{
			sweeper.PublicURL("kept.png"): {},
		}}

		scheduler := NewScheduler(lister, sweeper, zerolog.Nop())
		require.NoError(t, scheduler.SweepOrphans(context.Background()))
		assert.ElementsMatch(t, []string{"orphan-1.png", "orphan-2.jpg"}, sweeper.removed)
	})

	t.Run("row listing failure aborts before any removal", func(t *testing.T) {
		sweeper := &stubSweeper{keys: []string{"a.png"}}
		lister := stubLister{err: errors.New("table down")}

		scheduler := NewScheduler(lister, sweeper, zerolog.Nop())
		require.Error(t, scheduler.SweepOrphans(context.Background()))
		assert.Empty(t, sweeper.removed)
	})

	t.Run("one failed removal does not stop the sweep", func(t *testing.T) {
		sweeper := &stubSweeper{
			keys:      []string{"orphan-1.png", "orphan-2.png"},
			removeErr: map[string]error{"orphan-1.png": errors.New("locked")},
		}
		lister := stubLister{urls: map[string]struct{}{}}

		scheduler := NewScheduler(lister, sweeper, zerolog.Nop())
		require.NoError(t, scheduler.SweepOrphans(context.Background()))
		assert.Equal(t, []string{"orphan-2.png"}, sweeper.removed)
	})
}
