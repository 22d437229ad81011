package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/paasops/authgate/internal/config"
	"github.com/paasops/authgate/internal/database/audit"
)

// AuditPruneScheduler periodically removes auth events older than the
// configured retention window.
type AuditPruneScheduler struct {
	repo *audit.Repository
	cfg  config.Audit

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewAuditPruneScheduler creates a new scheduler instance.
func NewAuditPruneScheduler(repo *audit.Repository, cfg config.Audit) *AuditPruneScheduler {
	return &AuditPruneScheduler{
		repo: repo,
		cfg:  cfg,
		cron: cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler. Retention of zero or less disables pruning.
func (s *AuditPruneScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.cfg.RetentionDays <= 0 {
		log.Printf("Audit prune scheduler: retention disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.PruneSchedule, s.runPrune); err != nil {
		return fmt.Errorf("failed to schedule audit prune job: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Audit prune scheduler: started with schedule '%s', retention %d days",
		s.cfg.PruneSchedule, s.cfg.RetentionDays)

	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *AuditPruneScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Printf("Audit prune scheduler: stopped")
}

func (s *AuditPruneScheduler) runPrune() {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	pruned, err := s.repo.PruneBefore(cutoff)
	if err != nil {
		log.Printf("Audit prune failed: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("Audit prune removed %d events older than %s", pruned, cutoff.Format(time.RFC3339))
	}
}
