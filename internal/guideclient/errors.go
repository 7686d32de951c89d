package guideclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrNetworkFailure matches every error returned by Client: the request
// could not be completed, the service answered with a non-2xx status, or
// the response could not be decoded.
var ErrNetworkFailure = errors.New("network failure")

// Error describes a failed call to the guide service.
type Error struct {
	Op      string // "guide", "chat", "save favorite", ...
	Status  int    // HTTP status, 0 when no response was received
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: service error (%d): %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: service error (%d)", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + ErrNetworkFailure.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrNetworkFailure.
func (e *Error) Is(target error) bool {
	return target == ErrNetworkFailure
}

type errorPayload struct {
	Error   string `json:"error"`
	Detail  any    `json:"detail"`
	Message string `json:"message"`
}

func wrap(op string, err error) error {
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Op: op, Err: err}
}

func statusError(op string, status int, body []byte) error {
	apiErr := &Error{Op: op, Status: status}
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = firstNonEmpty(payload.Message, payload.Error, detailString(payload.Detail))
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.Message = truncateMessage(apiErr.Message, maxMessageRunes)
	return apiErr
}

const maxMessageRunes = 200

// truncateMessage cuts s to at most limit runes, never inside a rune.
func truncateMessage(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

func detailString(detail any) string {
	switch v := detail.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
