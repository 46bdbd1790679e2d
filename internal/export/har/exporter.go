// Package har writes captured records as an HTTP Archive (HAR 1.2) log.
package har

import (
	"cmp"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/sadopc/appmonitor/internal/record"
)

// HAR represents the HAR 1.2 format for export.
type HAR struct {
	Log HARLog `json:"log"`
}

// HARLog is the top-level log object.
type HARLog struct {
	Version string     `json:"version"`
	Creator HARCreator `json:"creator"`
	Entries []HAREntry `json:"entries"`
}

// HARCreator identifies the tool that created the HAR.
type HARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HAREntry represents a single request/response pair.
type HAREntry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Time            float64     `json:"time"`
	Request         HARRequest  `json:"request"`
	Response        HARResponse `json:"response"`
	Cache           struct{}    `json:"cache"`
	Timings         HARTimings  `json:"timings"`
	Comment         string      `json:"comment,omitempty"`
}

// HARRequest is the request portion of an entry.
type HARRequest struct {
	Method      string       `json:"method"`
	URL         string       `json:"url"`
	HTTPVersion string       `json:"httpVersion"`
	Cookies     []HARHeader  `json:"cookies"`
	Headers     []HARHeader  `json:"headers"`
	QueryString []HARQuery   `json:"queryString"`
	PostData    *HARPostData `json:"postData,omitempty"`
	HeadersSize int          `json:"headersSize"`
	BodySize    int          `json:"bodySize"`
}

// HARResponse is the response portion of an entry.
type HARResponse struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	HTTPVersion string      `json:"httpVersion"`
	Cookies     []HARHeader `json:"cookies"`
	Headers     []HARHeader `json:"headers"`
	Content     HARContent  `json:"content"`
	RedirectURL string      `json:"redirectURL"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

// HARHeader is a name/value pair for headers.
type HARHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARQuery is a name/value pair for query string parameters.
type HARQuery struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARPostData is the body of a request.
type HARPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// HARContent is the body of a response.
type HARContent struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
}

// HARTimings holds timing info for an entry. Records only carry a total
// duration, so everything is attributed to wait.
type HARTimings struct {
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
}

// Creator names the producing application in exported logs.
var Creator = HARCreator{Name: "appmonitor", Version: "dev"}

// Export creates HAR 1.2 JSON from records, in the order given.
func Export(records []record.LogRecord) ([]byte, error) {
	entries := make([]HAREntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, buildHAREntry(r))
	}

	har := HAR{
		Log: HARLog{
			Version: "1.2",
			Creator: Creator,
			Entries: entries,
		},
	}
	return json.MarshalIndent(har, "", "  ")
}

func buildHAREntry(r record.LogRecord) HAREntry {
	ms := r.Duration * 1000
	entry := HAREntry{
		StartedDateTime: r.Timestamp.UTC().Format(time.RFC3339Nano),
		Time:            ms,
		Request:         buildHARRequest(r),
		Response:        buildHARResponse(r),
		Timings:         HARTimings{Send: 0, Wait: ms, Receive: 0},
	}
	if r.IsPending() {
		entry.Comment = "pending"
	}
	return entry
}

func buildHARRequest(r record.LogRecord) HARRequest {
	body := r.RequestBodyText()
	harReq := HARRequest{
		Method:      r.Method,
		URL:         r.URL,
		HTTPVersion: "HTTP/1.1",
		Cookies:     []HARHeader{},
		Headers:     headerList(r.RequestHeaders),
		QueryString: queryList(r.URL),
		HeadersSize: -1,
		BodySize:    len(body),
	}

	if body != "" {
		harReq.PostData = &HARPostData{
			MimeType: mimeType(r.RequestHeaders, "text/plain"),
			Text:     body,
		}
	}
	return harReq
}

func buildHARResponse(r record.LogRecord) HARResponse {
	body := r.ResponseBodyText()
	return HARResponse{
		Status:      r.StatusCode,
		StatusText:  http.StatusText(r.StatusCode),
		HTTPVersion: "HTTP/1.1",
		Cookies:     []HARHeader{},
		Headers:     headerList(r.ResponseHeaders),
		HeadersSize: -1,
		BodySize:    len(body),
		Content: HARContent{
			Size:     len(body),
			MimeType: mimeType(r.ResponseHeaders, ""),
			Text:     body,
		},
	}
}

func headerList(h map[string]string) []HARHeader {
	out := make([]HARHeader, 0, len(h))
	for k, v := range h {
		out = append(out, HARHeader{Name: k, Value: v})
	}
	slices.SortFunc(out, func(a, b HARHeader) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func queryList(raw string) []HARQuery {
	out := []HARQuery{}
	u, err := url.Parse(raw)
	if err != nil {
		return out
	}
	q := u.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range q[k] {
			out = append(out, HARQuery{Name: k, Value: v})
		}
	}
	return out
}

func mimeType(h map[string]string, fallback string) string {
	for k, v := range h {
		if http.CanonicalHeaderKey(k) == "Content-Type" {
			return v
		}
	}
	return fallback
}
