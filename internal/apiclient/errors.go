package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gnmweb/internal/common"
)

// Error is a non-2xx backend answer.
type Error struct {
	Status  int
	Message string
	Body    []byte
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend status %d", e.Status)
}

// Is maps the status to a sentinel from package common.
func (e *Error) Is(target error) bool {
	switch target {
	case common.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case common.ErrForbidden:
		return e.Status == http.StatusForbidden
	case common.ErrNotFound:
		return e.Status == http.StatusNotFound
	case common.ErrUnavailable:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

// Client reports whether the backend rejected the request itself (4xx).
func (e *Error) Client() bool {
	return e.Status >= 400 && e.Status < 500
}

func newError(status int, body []byte) *Error {
	return &Error{Status: status, Message: messageFromBody(body), Body: body}
}

// messageFromBody extracts a human message from a backend error body:
// detail, message or error keys first, then the first field error of a
// validation body ("email: already registered").
func messageFromBody(body []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		var list []string
		if json.Unmarshal(body, &list) == nil && len(list) > 0 {
			return list[0]
		}
		return ""
	}

	for _, k := range []string{"detail", "message", "error"} {
		if raw, ok := obj[k]; ok {
			if s := firstString(raw); s != "" {
				return s
			}
		}
	}

	if raw, ok := obj["non_field_errors"]; ok {
		if s := firstString(raw); s != "" {
			return s
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s := firstString(obj[k]); s != "" {
			return k + ": " + s
		}
	}
	return ""
}

func firstString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}
