package practice

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/weitinglin/tingxie/internal/gitsource"
)

// SyncDataset refreshes the dataset and swaps the catalog. With a git
// remote configured it clones or pulls the checkout first; without one
// it just re-reads the file.
func (s *Service) SyncDataset() error {
	if s.dataset.Repo != "" {
		if err := gitsource.Sync(s.dataset.Repo, s.dataset.Dir); err != nil {
			return fmt.Errorf("dataset sync: %w", err)
		}
	}
	return s.Reload()
}

// StartAutoSync refreshes the dataset every interval in the background
// until StopAutoSync. A failed refresh keeps the current catalog.
func (s *Service) StartAutoSync(interval time.Duration) error {
	scheduler := gocron.NewScheduler(time.Local)
	_, err := scheduler.Every(interval).Do(func() {
		if err := s.SyncDataset(); err != nil {
			slog.Warn("scheduled dataset sync failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule dataset sync: %w", err)
	}
	scheduler.StartAsync()

	s.mu.Lock()
	s.scheduler = scheduler
	s.mu.Unlock()
	slog.Info("dataset auto-sync started", "interval", interval)
	return nil
}

// StopAutoSync stops the background refresh if one is running.
func (s *Service) StopAutoSync() {
	s.mu.Lock()
	scheduler := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()
	if scheduler != nil {
		scheduler.Stop()
	}
}
