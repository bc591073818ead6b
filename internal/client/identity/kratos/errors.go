package kratos

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/codelife/internal/client/identity"
)

// Kratos UI message ids that carry a meaning the client cares about.
// See https://www.ory.sh/docs/kratos/concepts/ui-messages.
const (
	msgInvalidCredentials = 4000006
	msgDuplicateIdentity  = 4000007
	msgPasswordTooShort   = 4000032
)

type uiMessage struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// errorBody covers both shapes Kratos answers failures with: a flow whose UI
// carries validation messages, or a generic error envelope.
type errorBody struct {
	UI struct {
		Messages []uiMessage `json:"messages"`
		Nodes    []struct {
			Messages []uiMessage `json:"messages"`
		} `json:"nodes"`
	} `json:"ui"`
	Error struct {
		Code    int    `json:"code"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
}

type bodyError interface {
	Body() []byte
}

func (p *Provider) mapError(err error, resp *http.Response) error {
	if resp == nil {
		return identity.Unavailable(p.Name(), err)
	}

	var body errorBody
	var be bodyError
	if errors.As(err, &be) {
		_ = json.Unmarshal(be.Body(), &body)
	}

	for _, m := range collectMessages(body) {
		if m.Type != "error" {
			continue
		}
		switch m.ID {
		case msgInvalidCredentials:
			return &identity.AuthError{Code: strconv.FormatInt(m.ID, 10), Message: "Invalid email or password.", Err: identity.ErrInvalidCredentials}
		case msgDuplicateIdentity:
			return &identity.AuthError{Code: strconv.FormatInt(m.ID, 10), Message: "The email address is already in use by another account.", Err: identity.ErrInvalidInput}
		case msgPasswordTooShort:
			return &identity.AuthError{Code: strconv.FormatInt(m.ID, 10), Message: "Password should be at least 6 characters.", Err: identity.ErrInvalidInput}
		default:
			return &identity.AuthError{Code: strconv.FormatInt(m.ID, 10), Message: m.Text, Err: identity.ErrInvalidInput}
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return sessionExpired(firstNonEmpty(body.Error.Reason, body.Error.Message, "unauthorized"))
	case resp.StatusCode >= http.StatusInternalServerError:
		return identity.Unavailable(p.Name(), fmt.Errorf("status %d: %w", resp.StatusCode, err))
	}

	msg := firstNonEmpty(body.Error.Reason, body.Error.Message, "Authentication failed")
	return &identity.AuthError{Code: strconv.Itoa(resp.StatusCode), Message: msg, Err: err}
}

func collectMessages(b errorBody) []uiMessage {
	out := append([]uiMessage(nil), b.UI.Messages...)
	for _, n := range b.UI.Nodes {
		out = append(out, n.Messages...)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func sessionExpired(reason string) *identity.AuthError {
	return &identity.AuthError{
		Code:    "session_inactive",
		Message: "Your session has expired, please sign in again.",
		Err:     fmt.Errorf("%s: %w", reason, identity.ErrSessionExpired),
	}
}
