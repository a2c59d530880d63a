package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ImageLister provides the set of image rows the sweep treats as the
// source of truth for which blobs are referenced.
type ImageLister interface {
	ListAllURLs(ctx context.Context) (map[string]struct{}, error)
}

// BlobSweeper is the slice of the object store the sweep needs.
type BlobSweeper interface {
	ListKeys(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Scheduler runs the orphaned-blob sweep: the add flow uploads before
// it inserts, so a failed insert can leave a blob no row points at.
type Scheduler struct {
	cron   *cron.Cron
	images ImageLister
	store  BlobSweeper
	log    zerolog.Logger
}

func NewScheduler(images ImageLister, store BlobSweeper, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:   c,
		images: images,
		store:  store,
		log:    log,
	}
}

func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runSweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for a running sweep to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.SweepOrphans(ctx); err != nil {
		s.log.Error().Err(err).Msg("orphan sweep failed")
	}
}

// SweepOrphans removes every stored blob whose public URL has no
// referencing table row. Best effort: one failed removal does not stop
// the rest of the sweep.
func (s *Scheduler) SweepOrphans(ctx context.Context) error {
	referenced, err := s.images.ListAllURLs(ctx)
	if err != nil {
		return err
	}

	keys, err := s.store.ListKeys(ctx)
	if err != nil {
		return err
	}

	removed := 0
	for _, key := range keys {
		if _, ok := referenced[s.store.PublicURL(key)]; ok {
			continue
		}
		if err := s.store.Remove(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("orphan removal failed")
			continue
		}
		removed++
	}

	s.log.Info().
		Int("objects", len(keys)).
		Int("removed", removed).
		Msg("orphan sweep finished")
	return nil
}
