package gateway

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jrsteele09/go-bank-session/internal/errors"
)

// CannotConnectDetail is the detail reported for transport failures.
const CannotConnectDetail = "Cannot connect to server"

const nonFieldErrorsKey = "non_field_errors"

// APIError is a structured error returned by the ledger, or synthesized when
// the ledger could not be reached (Status 0) or its error body was unreadable.
type APIError struct {
	Status int
	Detail string
	Code   string
	Fields map[string][]string
	Raw    json.RawMessage
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message()
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message())
}

// Unwrap maps well-known statuses onto the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case 0:
		return errors.ErrCannotConnect
	case 401:
		return errors.ErrNotAuthenticated
	case 403:
		return errors.ErrForbidden
	case 404:
		return errors.ErrNotFound
	}
	return nil
}

// Message prefers field-specific messages over the generic detail.
func (e *APIError) Message() string {
	if msg := e.FieldMessage(nonFieldErrorsKey); msg != "" {
		return msg
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if msg := e.FieldMessage(keys...); msg != "" {
		return msg
	}
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Error %d", e.Status)
}

// FieldMessage returns the first message of the first listed field that has one.
func (e *APIError) FieldMessage(fields ...string) string {
	for _, f := range fields {
		if msgs := e.Fields[f]; len(msgs) > 0 && msgs[0] != "" {
			return msgs[0]
		}
	}
	return ""
}

func cannotConnect() *APIError {
	return &APIError{Detail: CannotConnectDetail}
}

// parseAPIError decodes a ledger error body. Bodies that are not JSON produce
// the synthetic detail "Error <status>".
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Raw: json.RawMessage(body)}

	var list []string
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) > 0 {
			apiErr.Fields = map[string][]string{nonFieldErrorsKey: list}
		} else {
			apiErr.Detail = fmt.Sprintf("Error %d", status)
		}
		return apiErr
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err != nil || object == nil {
		apiErr.Detail = fmt.Sprintf("Error %d", status)
		apiErr.Raw = nil
		return apiErr
	}

	for key, raw := range object {
		switch key {
		case "detail":
			_ = json.Unmarshal(raw, &apiErr.Detail)
			continue
		case "code":
			_ = json.Unmarshal(raw, &apiErr.Code)
			continue
		}
		if msgs := fieldMessages(raw); len(msgs) > 0 {
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[key] = msgs
		}
	}
	return apiErr
}

func fieldMessages(raw json.RawMessage) []string {
	var msgs []string
	if err := json.Unmarshal(raw, &msgs); err == nil {
		return msgs
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
		return []string{msg}
	}
	return nil
}

// IsSessionEnded reports whether err means the session was evicted and the call has no result.
func IsSessionEnded(err error) bool {
	return errors.Is(err, errors.ErrSessionEnded)
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
