package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/appmonitor/internal/record"
)

// Transaction builds the two records an instrumented client emits for one
// HTTP exchange: a pending record when the request starts and the terminal
// record, sharing its ID, when the response arrives.
type Transaction struct {
	ID      string
	Started time.Time
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// NewTransaction starts a transaction with a fresh UUID.
func NewTransaction(method, url string) *Transaction {
	return &Transaction{
		ID:      uuid.NewString(),
		Started: time.Now(),
		Method:  method,
		URL:     url,
	}
}

// Pending returns the in-flight record.
func (t *Transaction) Pending() record.LogRecord {
	r := record.LogRecord{
		ID:             t.ID,
		Timestamp:      t.Started,
		Method:         t.Method,
		URL:            t.URL,
		RequestHeaders: t.Headers,
	}
	if t.Body != "" {
		body := t.Body
		r.RequestBody = &body
	}
	return r
}

// Complete returns the terminal record for the given response.
func (t *Transaction) Complete(status int, elapsed time.Duration, headers map[string]string, body string) record.LogRecord {
	r := t.Pending()
	r.StatusCode = status
	r.Duration = elapsed.Seconds()
	r.ResponseHeaders = headers
	if body != "" {
		r.ResponseBody = &body
	}
	return r
}
