package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FallbackMessage is reported when the backend gives no usable detail.
const FallbackMessage = "API request failed"

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	return e.Message
}

// String includes the status and endpoint, for logs.
func (e *APIError) String() string {
	return fmt.Sprintf("%s: %d %s", e.Endpoint, e.Status, e.Message)
}

// errorBody is the backend error schema. Detail is either a string or a
// list of validation items each carrying a msg.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type detailItem struct {
	Msg string `json:"msg"`
}

func errorMessage(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return FallbackMessage
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return FallbackMessage
	}

	var items []detailItem
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return FallbackMessage
}
