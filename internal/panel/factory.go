package panel

import (
	"fmt"
	"strings"
	"time"

	"smpanel/internal/models"
)

// PanelFactory creates a PanelClient based on the panel type.
func PanelFactory(creds Credentials, timeout time.Duration) (PanelClient, error) {
	switch strings.ToLower(strings.TrimSpace(creds.Type)) {
	case "", models.PanelTypeXUI, "xui", "x-ui":
		return NewXUIClient(creds.URL, creds.Username, creds.Password, timeout), nil
	case models.PanelTypeMarzban:
		return NewMarzbanClient(creds.URL, creds.Username, creds.Password, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported panel type: %s", creds.Type)
	}
}

// CredentialsOf extracts the login data of a stored panel.
func CredentialsOf(p *models.Panel) Credentials {
	return Credentials{
		URL:      p.URL,
		Username: p.Username,
		Password: p.Password,
		Type:     p.Type,
	}
}

func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	return strings.TrimRight(raw, "/")
}
