package upload

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReferenceLister reports which image paths are still attached to records.
type ReferenceLister interface {
	ReferencedImages(ctx context.Context) ([]string, error)
}

// Sweeper periodically removes upload-area files no record references,
// e.g. files orphaned by a crash between a record write and its image
// cleanup. It is opt-in: without a schedule such orphans stay on disk.
type Sweeper struct {
	store  *Store
	refs   ReferenceLister
	minAge time.Duration
	cron   *cron.Cron
}

func NewSweeper(store *Store, refs ReferenceLister, minAge time.Duration) *Sweeper {
	return &Sweeper{
		store:  store,
		refs:   refs,
		minAge: minAge,
		cron:   cron.New(),
	}
}

// Start schedules the sweep. An empty schedule disables it.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		if err := s.Sweep(context.Background()); err != nil {
			logrus.WithError(err).Warn("upload sweep failed")
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	logrus.WithField("schedule", schedule).Info("upload sweep scheduled")
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Sweep removes unreferenced files older than minAge. Files newer than
// minAge are kept; they may belong to an in-flight create.
func (s *Sweeper) Sweep(ctx context.Context) error {
	referenced, err := s.refs.ReferencedImages(ctx)
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(referenced))
	for _, image := range referenced {
		keep[filepath.Base(image)] = true
	}

	entries, err := os.ReadDir(s.store.Dir())
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-s.minAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || keep[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.store.Dir(), entry.Name())
		if err := os.Remove(path); err != nil {
			logrus.WithError(err).WithField("path", path).Warn("failed to remove orphaned file")
			continue
		}
		removed++
	}

	if removed > 0 {
		logrus.WithField("removed", removed).Info("upload sweep removed orphaned files")
	}
	return nil
}
