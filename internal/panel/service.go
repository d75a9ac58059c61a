package panel

import (
	"context"
	"time"

	"go.uber.org/zap"

	"smpanel/internal/models"
	"smpanel/internal/pkg/httpclient"
)

// Service runs login probes and inbound discovery against remote panels.
type Service struct {
	timeout time.Duration
	logger  *zap.Logger
}

func NewService(timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = httpclient.DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{timeout: timeout, logger: logger}
}

// CheckLogin probes the panel's login endpoint once.
func (s *Service) CheckLogin(ctx context.Context, creds Credentials) LoginResult {
	client, err := PanelFactory(creds, s.timeout)
	if err != nil {
		return LoginResult{Outcome: OutcomeHTTPError, Err: err}
	}
	res := client.Login(ctx)
	s.logger.Info("panel login probe",
		zap.String("url", creds.URL),
		zap.String("type", client.PanelType()),
		zap.Int("outcome", int(res.Outcome)),
		zap.Int("status_code", res.StatusCode),
		zap.Error(res.Err),
	)
	return res
}

// Inbounds logs in and lists inbounds. Failures are logged and yield an
// empty slice.
func (s *Service) Inbounds(ctx context.Context, p *models.Panel) []Inbound {
	client, err := PanelFactory(CredentialsOf(p), s.timeout)
	if err != nil {
		s.logger.Warn("panel inbounds: bad panel type", zap.Uint("panel_id", p.ID), zap.Error(err))
		return []Inbound{}
	}
	if res := client.Login(ctx); !res.OK() {
		s.logger.Warn("panel inbounds: login failed",
			zap.Uint("panel_id", p.ID),
			zap.Int("status_code", res.StatusCode),
			zap.Error(res.Err),
		)
		return []Inbound{}
	}
	inbounds, err := client.Inbounds(ctx)
	if err != nil {
		s.logger.Warn("panel inbounds: list failed", zap.Uint("panel_id", p.ID), zap.Error(err))
		return []Inbound{}
	}
	s.logger.Info("panel inbounds", zap.Uint("panel_id", p.ID), zap.Int("count", len(inbounds)))
	return inbounds
}

// StatusOf maps a probe outcome to the panel status column.
func StatusOf(res LoginResult) string {
	switch res.Outcome {
	case OutcomeActive:
		return models.PanelStatusActive
	case OutcomeUnverified:
		return models.PanelStatusUnknown
	default:
		return models.PanelStatusInactive
	}
}
