package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smpanel/internal/models"
	"smpanel/internal/panel"
)

type fakePanels struct {
	panels  []models.Panel
	updates map[uint]string
}

func (f *fakePanels) FindAll() ([]models.Panel, error) { return f.panels, nil }

func (f *fakePanels) UpdateStatus(id uint, status string) error {
	f.updates[id] = status
	return nil
}

type fakeProber map[string]panel.LoginResult

func (f fakeProber) CheckLogin(_ context.Context, c panel.Credentials) panel.LoginResult {
	return f[c.URL]
}

type fakeNotifier struct{ texts []string }

func (f *fakeNotifier) NotifyAdmin(text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func TestPanelStatusSweep(t *testing.T) {
	store := &fakePanels{
		panels: []models.Panel{
			{ID: 1, Name: "up", URL: "u1", Status: models.PanelStatusActive},
			{ID: 2, Name: "down", URL: "u2", Status: models.PanelStatusActive},
			{ID: 3, Name: "back", URL: "u3", Status: models.PanelStatusUnknown},
		},
		updates: map[uint]string{},
	}
	prober := fakeProber{
		"u1": {Outcome: panel.OutcomeActive},
		"u2": {Outcome: panel.OutcomeUnreachable, Err: errors.New("dial tcp: refused")},
		"u3": {Outcome: panel.OutcomeActive},
	}
	notifier := &fakeNotifier{}

	s := New("@every 1h", time.Second, store, prober, notifier, zap.NewNop())
	s.panelStatusSweep()

	assert.Equal(t, map[uint]string{2: models.PanelStatusInactive, 3: models.PanelStatusActive}, store.updates)
	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "down")
	assert.Contains(t, notifier.texts[0], "refused")
}

type countingProber struct{ calls int }

func (c *countingProber) CheckLogin(context.Context, panel.Credentials) panel.LoginResult {
	c.calls++
	return panel.LoginResult{Outcome: panel.OutcomeActive}
}

func TestPanelStatusSweepKeepsDeactivatedPanels(t *testing.T) {
	store := &fakePanels{
		panels:  []models.Panel{{ID: 4, Name: "off", URL: "u4", Status: models.PanelStatusInactive}},
		updates: map[uint]string{},
	}
	prober := &countingProber{}

	s := New("@every 1h", time.Second, store, prober, &fakeNotifier{}, zap.NewNop())
	s.panelStatusSweep()

	assert.Empty(t, store.updates)
	assert.Zero(t, prober.calls)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New("not a spec", time.Second, &fakePanels{}, fakeProber{}, nil, zap.NewNop())
	assert.Error(t, s.Start())

	disabled := New("", time.Second, &fakePanels{}, fakeProber{}, nil, zap.NewNop())
	assert.NoError(t, disabled.Start())
}
