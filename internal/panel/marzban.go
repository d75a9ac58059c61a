package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"smpanel/internal/models"
	"smpanel/internal/pkg/httpclient"
)

// MarzbanClient implements PanelClient for Marzban panels.
type MarzbanClient struct {
	baseURL  string
	username string
	password string
	token    string
	client   *httpclient.Client
}

// NewMarzbanClient creates a new Marzban panel client.
func NewMarzbanClient(baseURL, username, password string, timeout time.Duration) *MarzbanClient {
	return &MarzbanClient{
		baseURL:  normalizeBaseURL(baseURL),
		username: strings.TrimSpace(username),
		password: password,
		client:   httpclient.New(timeout).WithInsecureSkipVerify(),
	}
}

func (m *MarzbanClient) PanelType() string {
	return models.PanelTypeMarzban
}

// Login obtains a bearer token from the Marzban panel.
func (m *MarzbanClient) Login(ctx context.Context) LoginResult {
	resp, err := m.client.PostForm(ctx, m.baseURL+"/api/admin/token", map[string]string{
		"username": m.username,
		"password": m.password,
	})
	if err != nil {
		return LoginResult{Outcome: OutcomeUnreachable, Err: fmt.Errorf("marzban login: %w", err)}
	}

	res := LoginResult{StatusCode: resp.StatusCode()}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized:
		res.Outcome = OutcomeBadCredentials
		res.Message = detailOf(resp.Body())
		return res
	default:
		res.Outcome = OutcomeHTTPError
		return res
	}

	var result map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		res.Outcome = OutcomeUnverified
		return res
	}
	token, _ := result["access_token"].(string)
	if token == "" {
		res.Outcome = OutcomeUnverified
		return res
	}

	m.token = token
	m.client = m.client.WithBearerToken(token)
	res.Outcome = OutcomeActive
	return res
}

func detailOf(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}

// Inbounds reads /api/inbounds, which groups inbounds by protocol.
// Marzban exposes tags rather than numeric ids; ID is left zero.
func (m *MarzbanClient) Inbounds(ctx context.Context) ([]Inbound, error) {
	if m.token == "" {
		return nil, fmt.Errorf("marzban inbounds: not logged in")
	}
	resp, err := m.client.Get(ctx, m.baseURL+"/api/inbounds")
	if err != nil {
		return nil, fmt.Errorf("marzban inbounds: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("marzban inbounds: status %d", resp.StatusCode())
	}

	var raw map[string][]map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("marzban inbounds parse: %w", err)
	}

	protocols := make([]string, 0, len(raw))
	for protocol := range raw {
		protocols = append(protocols, protocol)
	}
	sort.Strings(protocols)

	var inbounds []Inbound
	for _, protocol := range protocols {
		for _, item := range raw[protocol] {
			remark := stringOf(item["remark"])
			if remark == "" {
				remark = stringOf(item["tag"])
			}
			inbounds = append(inbounds, Inbound{
				Protocol: protocol,
				Port:     int(toInt64(item["port"])),
				Remark:   remark,
			})
		}
	}
	return inbounds, nil
}
