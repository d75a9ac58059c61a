package panel

import "context"

// Credentials is what an administrator types in to register a panel.
type Credentials struct {
	URL      string
	Username string
	Password string
	Type     string
}

// Outcome classifies a login probe.
type Outcome int

const (
	// OutcomeActive: the panel answered and accepted (or plausibly accepted) the login.
	OutcomeActive Outcome = iota
	// OutcomeBadCredentials: the panel answered but rejected the username or password.
	OutcomeBadCredentials
	// OutcomeHTTPError: the panel answered with an unexpected status code.
	OutcomeHTTPError
	// OutcomeUnverified: 200 OK with a body we could not interpret.
	OutcomeUnverified
	// OutcomeUnreachable: transport failure or timeout.
	OutcomeUnreachable
)

// LoginResult is the outcome of one login probe.
type LoginResult struct {
	Outcome    Outcome
	StatusCode int
	// Message is the panel's own explanation (the `msg` field), if any.
	Message string
	Err     error
}

// OK reports whether the panel may be stored as active.
func (r LoginResult) OK() bool {
	return r.Outcome == OutcomeActive
}

// Retryable reports whether the user should simply re-enter the password.
func (r LoginResult) Retryable() bool {
	return r.Outcome == OutcomeBadCredentials
}

// Inbound is one listener exposed by a panel.
type Inbound struct {
	ID       int    `json:"id"`
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	Remark   string `json:"remark"`
}

// PanelClient is implemented per panel type.
type PanelClient interface {
	// Login probes the login endpoint and keeps the session for later calls.
	Login(ctx context.Context) LoginResult

	// Inbounds lists the panel's inbounds. Login must have succeeded first.
	Inbounds(ctx context.Context) ([]Inbound, error)

	// PanelType returns the panel type identifier.
	PanelType() string
}
