package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"smpanel/internal/models"
	"smpanel/internal/pkg/httpclient"
)

type xuiClient struct {
	baseURL  string
	username string
	password string
	client   *httpclient.Client
}

// NewXUIClient returns a client for 3x-ui panels. The login cookie is kept
// in the client's cookie jar.
func NewXUIClient(baseURL, username, password string, timeout time.Duration) PanelClient {
	return &xuiClient{
		baseURL:  strings.TrimSuffix(normalizeBaseURL(baseURL), "/login"),
		username: strings.TrimSpace(username),
		password: password,
		client:   httpclient.New(timeout).WithInsecureSkipVerify().WithHeader("Accept", "application/json"),
	}
}

func (x *xuiClient) PanelType() string {
	return models.PanelTypeXUI
}

func (x *xuiClient) Login(ctx context.Context) LoginResult {
	resp, err := x.client.PostForm(ctx, x.baseURL+"/login", map[string]string{
		"username": x.username,
		"password": x.password,
	})
	if err != nil {
		return LoginResult{Outcome: OutcomeUnreachable, Err: fmt.Errorf("xui login: %w", err)}
	}

	return classifyLogin(resp.StatusCode(), resp.Body())
}

// classifyLogin maps a login response to an Outcome.
func classifyLogin(status int, body []byte) LoginResult {
	res := LoginResult{StatusCode: status}
	switch {
	case status == http.StatusUnauthorized:
		res.Outcome = OutcomeBadCredentials
		return res
	case status != http.StatusOK:
		res.Outcome = OutcomeHTTPError
		return res
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		text := strings.ToLower(string(body))
		if strings.Contains(text, "login") || strings.Contains(text, "admin") {
			res.Outcome = OutcomeActive
		} else {
			res.Outcome = OutcomeUnverified
		}
		return res
	}

	if msg, ok := payload["msg"].(string); ok {
		res.Message = msg
	}
	if success, ok := payload["success"]; ok {
		if b, _ := success.(bool); b {
			res.Outcome = OutcomeActive
		} else {
			res.Outcome = OutcomeBadCredentials
		}
		return res
	}
	for _, key := range []string{"status", "result", "data"} {
		if _, ok := payload[key]; ok {
			res.Outcome = OutcomeActive
			return res
		}
	}
	res.Outcome = OutcomeUnverified
	return res
}

func (x *xuiClient) Inbounds(ctx context.Context) ([]Inbound, error) {
	resp, err := x.client.Get(ctx, x.baseURL+"/panel/api/inbounds/list")
	if err != nil {
		return nil, fmt.Errorf("xui inbounds: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("xui inbounds: status %d", resp.StatusCode())
	}
	return parseXUIInbounds(resp.Body())
}

func parseXUIInbounds(body []byte) ([]Inbound, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("xui inbounds parse: %w", err)
	}
	if ok, present := raw["success"].(bool); present && !ok {
		return nil, fmt.Errorf("xui inbounds rejected: %v", raw["msg"])
	}
	items, _ := raw["obj"].([]interface{})
	out := make([]Inbound, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, Inbound{
			ID:       int(toInt64(m["id"])),
			Protocol: stringOf(m["protocol"]),
			Port:     int(toInt64(m["port"])),
			Remark:   stringOf(m["remark"]),
		})
	}
	return out, nil
}
