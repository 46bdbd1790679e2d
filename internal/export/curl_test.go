package export

import (
	"strings"
	"testing"

	"github.com/sadopc/appmonitor/internal/record"
)

func strPtr(s string) *string { return &s }

func TestAsCurl_GET(t *testing.T) {
	r := record.LogRecord{
		ID:             "1",
		Method:         "GET",
		URL:            "https://api.example.com/users",
		RequestHeaders: map[string]string{"Accept": "application/json"},
	}

	want := "curl -v \\\n\t-X GET \\\n\t-H \"Accept: application/json\" \\\n\t\"https://api.example.com/users\""
	if got := AsCurl(r); got != want {
		t.Errorf("AsCurl() =\n%s\nwant\n%s", got, want)
	}
}

func TestAsCurl_POST(t *testing.T) {
	r := record.LogRecord{
		ID:          "1",
		Method:      "POST",
		URL:         "https://api.example.com/users",
		RequestBody: strPtr(`{"name":"test"}`),
	}

	result := AsCurl(r)
	if !strings.Contains(result, "-X POST") {
		t.Error("should have -X POST")
	}
	if !strings.Contains(result, `-d "{\"name\":\"test\"}"`) {
		t.Errorf("body quotes should be escaped, got: %s", result)
	}
}

func TestAsCurl_HeadersSortedWithoutContentLength(t *testing.T) {
	r := record.LogRecord{
		ID:     "1",
		Method: "PUT",
		URL:    "https://example.com/",
		RequestHeaders: map[string]string{
			"X-Trace":        "abc",
			"Content-Length": "12",
			"Authorization":  "Bearer t",
			"content-length": "12",
		},
	}

	result := AsCurl(r)
	if strings.Contains(strings.ToLower(result), "content-length") {
		t.Errorf("content-length should be skipped, got: %s", result)
	}
	auth := strings.Index(result, "Authorization")
	trace := strings.Index(result, "X-Trace")
	if auth < 0 || trace < 0 || auth > trace {
		t.Errorf("headers should be sorted, got: %s", result)
	}
}

func TestAsCurl_EmptyBodyOmitted(t *testing.T) {
	r := record.LogRecord{ID: "1", Method: "POST", URL: "https://example.com/", RequestBody: strPtr("")}
	if strings.Contains(AsCurl(r), "-d") {
		t.Error("empty body should not produce -d")
	}
}
