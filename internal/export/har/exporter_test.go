package har

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sadopc/appmonitor/internal/record"
)

func strPtr(s string) *string { return &s }

func TestExport(t *testing.T) {
	records := []record.LogRecord{
		{
			ID:              "a",
			Timestamp:       time.Date(2025, 12, 17, 10, 0, 0, 0, time.UTC),
			Method:          "POST",
			URL:             "https://api.example.com/users?version=2",
			StatusCode:      201,
			Duration:        0.25,
			RequestHeaders:  map[string]string{"content-type": "application/json"},
			ResponseHeaders: map[string]string{"Content-Type": "application/json"},
			RequestBody:     strPtr(`{"name":"John"}`),
			ResponseBody:    strPtr(`{"id":1}`),
		},
		{
			ID:        "b",
			Timestamp: time.Date(2025, 12, 17, 10, 0, 1, 0, time.UTC),
			Method:    "GET",
			URL:       "https://api.example.com/slow",
		},
	}

	data, err := Export(records)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var har HAR
	if err := json.Unmarshal(data, &har); err != nil {
		t.Fatalf("exported HAR is not valid JSON: %v", err)
	}

	if har.Log.Version != "1.2" {
		t.Errorf("expected version 1.2, got %s", har.Log.Version)
	}
	if har.Log.Creator.Name != "appmonitor" {
		t.Errorf("expected creator appmonitor, got %s", har.Log.Creator.Name)
	}
	if len(har.Log.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(har.Log.Entries))
	}

	entry := har.Log.Entries[0]
	if entry.StartedDateTime != "2025-12-17T10:00:00Z" {
		t.Errorf("startedDateTime = %s", entry.StartedDateTime)
	}
	if entry.Time != 250 {
		t.Errorf("time = %v, want 250", entry.Time)
	}
	if entry.Request.Method != "POST" {
		t.Errorf("expected method POST, got %s", entry.Request.Method)
	}
	if entry.Request.PostData == nil || entry.Request.PostData.MimeType != "application/json" {
		t.Errorf("postData = %+v", entry.Request.PostData)
	}
	if len(entry.Request.QueryString) != 1 || entry.Request.QueryString[0] != (HARQuery{Name: "version", Value: "2"}) {
		t.Errorf("queryString = %+v", entry.Request.QueryString)
	}
	if entry.Response.Status != 201 || entry.Response.StatusText != "Created" {
		t.Errorf("response status = %d %q", entry.Response.Status, entry.Response.StatusText)
	}
	if entry.Response.Content.Text != `{"id":1}` || entry.Response.Content.Size != 8 {
		t.Errorf("content = %+v", entry.Response.Content)
	}

	pending := har.Log.Entries[1]
	if pending.Comment != "pending" || pending.Request.PostData != nil {
		t.Errorf("pending entry = %+v", pending)
	}
}

func TestExportEmpty(t *testing.T) {
	data, err := Export(nil)
	if err != nil {
		t.Fatal(err)
	}
	var har HAR
	if err := json.Unmarshal(data, &har); err != nil {
		t.Fatal(err)
	}
	if har.Log.Entries == nil || len(har.Log.Entries) != 0 {
		t.Errorf("entries = %#v, want empty list", har.Log.Entries)
	}
}
