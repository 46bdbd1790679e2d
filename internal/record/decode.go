package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// maxRawLength bounds how much of a rejected payload a DecodeError keeps.
const maxRawLength = 512

// DecodeError reports a payload that could not be turned into a LogRecord.
// Raw holds the (possibly truncated) payload text for diagnostics.
type DecodeError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode record: %s: %v", e.Reason, e.Err)
	}
	return "decode record: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// wireRecord mirrors the JSON schema with pointers on required fields so a
// missing key can be told apart from a zero value.
type wireRecord struct {
	ID              *string           `json:"id"`
	Timestamp       *string           `json:"timestamp"`
	Method          *string           `json:"method"`
	URL             *string           `json:"url"`
	StatusCode      *int              `json:"statusCode"`
	Duration        *float64          `json:"duration"`
	RequestHeaders  map[string]string `json:"requestHeaders"`
	ResponseHeaders map[string]string `json:"responseHeaders"`
	RequestBody     *string           `json:"requestBody"`
	ResponseBody    *string           `json:"responseBody"`
}

// Decode parses one message payload into a LogRecord. Every failure is
// returned as a *DecodeError.
func Decode(payload []byte) (LogRecord, error) {
	var w wireRecord
	if err := json.Unmarshal(payload, &w); err != nil {
		return LogRecord{}, newDecodeError("malformed JSON", payload, err)
	}

	var missing []string
	if w.ID == nil {
		missing = append(missing, "id")
	}
	if w.Timestamp == nil {
		missing = append(missing, "timestamp")
	}
	if w.Method == nil {
		missing = append(missing, "method")
	}
	if w.URL == nil {
		missing = append(missing, "url")
	}
	if w.StatusCode == nil {
		missing = append(missing, "statusCode")
	}
	if w.Duration == nil {
		missing = append(missing, "duration")
	}
	if len(missing) > 0 {
		return LogRecord{}, newDecodeError("missing required field(s) "+strings.Join(missing, ", "), payload, nil)
	}
	if *w.ID == "" {
		return LogRecord{}, newDecodeError("empty id", payload, nil)
	}

	ts, err := ParseTimestamp(*w.Timestamp)
	if err != nil {
		return LogRecord{}, newDecodeError("invalid timestamp", payload, err)
	}

	return LogRecord{
		ID:              *w.ID,
		Timestamp:       ts,
		Method:          *w.Method,
		URL:             *w.URL,
		StatusCode:      *w.StatusCode,
		Duration:        *w.Duration,
		RequestHeaders:  w.RequestHeaders,
		ResponseHeaders: w.ResponseHeaders,
		RequestBody:     w.RequestBody,
		ResponseBody:    w.ResponseBody,
	}, nil
}

// ParseTimestamp accepts ISO-8601 date-times in RFC 3339 form, with or
// without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not an ISO-8601 date-time", s)
	}
	return t, nil
}

// Encode renders a record in the wire schema.
func Encode(r LogRecord) ([]byte, error) {
	if r.ID == "" {
		return nil, errors.New("encode record: empty id")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

func newDecodeError(reason string, payload []byte, err error) *DecodeError {
	raw := payload
	if len(raw) > maxRawLength {
		raw = raw[:maxRawLength]
	}
	return &DecodeError{Reason: reason, Raw: string(raw), Err: err}
}
