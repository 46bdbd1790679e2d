// Package export renders captured records in formats other tools consume.
package export

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sadopc/appmonitor/internal/record"
)

const curlSeparator = " \\\n\t"

// AsCurl converts a record's request side to a curl command. Every part sits
// on its own continuation line.
func AsCurl(r record.LogRecord) string {
	parts := []string{"curl -v", "-X " + r.Method}

	keys := make([]string, 0, len(r.RequestHeaders))
	for k := range r.RequestHeaders {
		if strings.EqualFold(k, "content-length") {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("-H \"%s: %s\"", k, r.RequestHeaders[k]))
	}

	if body := r.RequestBodyText(); body != "" {
		parts = append(parts, fmt.Sprintf("-d \"%s\"", strings.ReplaceAll(body, `"`, `\"`)))
	}

	parts = append(parts, fmt.Sprintf("%q", r.URL))
	return strings.Join(parts, curlSeparator)
}
