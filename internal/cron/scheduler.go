package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"smpanel/internal/models"
	"smpanel/internal/panel"
)

// PanelStore is the slice of the panel repository the sweep needs.
type PanelStore interface {
	FindAll() ([]models.Panel, error)
	UpdateStatus(id uint, status string) error
}

// Prober runs a login probe against a panel.
type Prober interface {
	CheckLogin(ctx context.Context, creds panel.Credentials) panel.LoginResult
}

// Notifier delivers a text to the administrator.
type Notifier interface {
	NotifyAdmin(text string) error
}

// Scheduler manages all cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	timeout  time.Duration
	logger   *zap.Logger
	panels   PanelStore
	prober   Prober
	notifier Notifier
}

// New creates a new cron scheduler. An empty spec disables the panel sweep.
func New(spec string, timeout time.Duration, panels PanelStore, prober Prober, notifier Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		spec:     spec,
		timeout:  timeout,
		logger:   logger,
		panels:   panels,
		prober:   prober,
		notifier: notifier,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		s.logger.Info("Panel status sweep disabled")
		return nil
	}
	s.logger.Info("Starting cron scheduler...")

	if _, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Debug("Running: panel status sweep")
		s.panelStatusSweep()
	}); err != nil {
		return fmt.Errorf("register panel sweep %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("Cron scheduler started")
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// ── Panel status sweep ────────────────────────────────────────────────

func (s *Scheduler) panelStatusSweep() {
	defer s.recoverFromPanic("panelStatusSweep")

	panels, err := s.panels.FindAll()
	if err != nil {
		s.logger.Error("Panel sweep: list panels failed", zap.Error(err))
		return
	}

	for i := range panels {
		p := &panels[i]
		// Inactive panels stay out until the admin toggles or checks them.
		if p.Status == models.PanelStatusInactive {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		res := s.prober.CheckLogin(ctx, panel.CredentialsOf(p))
		cancel()

		status := panel.StatusOf(res)
		if status == p.Status {
			continue
		}
		if err := s.panels.UpdateStatus(p.ID, status); err != nil {
			s.logger.Error("Panel sweep: update status failed", zap.Uint("panel_id", p.ID), zap.Error(err))
			continue
		}
		s.logger.Info("Panel status changed",
			zap.Uint("panel_id", p.ID),
			zap.String("from", p.Status),
			zap.String("to", status),
		)

		if p.Status == models.PanelStatusActive && s.notifier != nil {
			if err := s.notifier.NotifyAdmin(offlineAlert(p, res)); err != nil {
				s.logger.Warn("Panel sweep: notify admin failed", zap.Error(err))
			}
		}
	}
}

func offlineAlert(p *models.Panel, res panel.LoginResult) string {
	reason := fmt.Sprintf("کد %d", res.StatusCode)
	if res.Err != nil {
		reason = res.Err.Error()
	} else if res.Message != "" {
		reason = res.Message
	}
	return fmt.Sprintf("🔴 پنل %s از دسترس خارج شد!\n\n🌐 آدرس: %s\n❌ خطا: %s", p.Name, p.URL, reason)
}

func (s *Scheduler) recoverFromPanic(jobName string) {
	if r := recover(); r != nil {
		s.logger.Error("Cron job panicked", zap.String("job", jobName), zap.Any("error", r))
	}
}
