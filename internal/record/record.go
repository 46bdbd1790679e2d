package record

import (
	"net/url"
	"time"
)

// LogRecord is one captured HTTP transaction as reported by an instrumented
// client. A record with StatusCode 0 is still in flight; a later record with
// the same ID and a non-zero status is its terminal update.
type LogRecord struct {
	ID              string            `json:"id"`
	Timestamp       time.Time         `json:"timestamp"`
	Method          string            `json:"method"`
	URL             string            `json:"url"`
	StatusCode      int               `json:"statusCode"`
	Duration        float64           `json:"duration"` // seconds
	RequestHeaders  map[string]string `json:"requestHeaders,omitempty"`
	ResponseHeaders map[string]string `json:"responseHeaders,omitempty"`
	RequestBody     *string           `json:"requestBody,omitempty"`
	ResponseBody    *string           `json:"responseBody,omitempty"`
}

// IsPending reports whether the transaction had not completed when captured.
func (r LogRecord) IsPending() bool { return r.StatusCode == 0 }

// IsError reports whether the response status is a 4xx or 5xx.
func (r LogRecord) IsError() bool { return r.StatusCode >= 400 }

// Elapsed returns Duration as a time.Duration.
func (r LogRecord) Elapsed() time.Duration {
	return time.Duration(r.Duration * float64(time.Second))
}

// FormattedTime renders the capture time as HH:MM:SS.mmm in local time.
func (r LogRecord) FormattedTime() string {
	return r.Timestamp.Local().Format("15:04:05.000")
}

// Host returns the URL host, or "Unknown" when the URL has none.
func (r LogRecord) Host() string {
	u, err := url.Parse(r.URL)
	if err != nil || u.Host == "" {
		return "Unknown"
	}
	return u.Hostname()
}

// Path returns the URL path, defaulting to "/".
func (r LogRecord) Path() string {
	u, err := url.Parse(r.URL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// Query returns the raw query string, or "" when absent.
func (r LogRecord) Query() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return u.RawQuery
}

// RequestBodyText returns the request body or "" when absent.
func (r LogRecord) RequestBodyText() string {
	if r.RequestBody == nil {
		return ""
	}
	return *r.RequestBody
}

// ResponseBodyText returns the response body or "" when absent.
func (r LogRecord) ResponseBodyText() string {
	if r.ResponseBody == nil {
		return ""
	}
	return *r.ResponseBody
}

// StatusCategory groups status codes the way the viewer colors them.
type StatusCategory int

const (
	CategoryPending StatusCategory = iota
	CategorySuccess
	CategoryRedirect
	CategoryClientError
	CategoryServerError
)

// CategoryOf maps a status code to its category. Codes outside 1..599 that
// are not pending fall into CategoryClientError.
func CategoryOf(code int) StatusCategory {
	switch {
	case code == 0:
		return CategoryPending
	case code >= 200 && code < 300:
		return CategorySuccess
	case code >= 300 && code < 400:
		return CategoryRedirect
	case code >= 400 && code < 500:
		return CategoryClientError
	case code >= 500 && code < 600:
		return CategoryServerError
	default:
		return CategoryClientError
	}
}

func (c StatusCategory) String() string {
	switch c {
	case CategoryPending:
		return "Pending"
	case CategorySuccess:
		return "2xx Success"
	case CategoryRedirect:
		return "3xx Redirect"
	case CategoryClientError:
		return "4xx Client Error"
	case CategoryServerError:
		return "5xx Server Error"
	default:
		return "Unknown"
	}
}
