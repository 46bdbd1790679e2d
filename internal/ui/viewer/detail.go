package viewer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/pretty"

	"github.com/sadopc/appmonitor/internal/export"
	"github.com/sadopc/appmonitor/internal/record"
	"github.com/sadopc/appmonitor/internal/ui/theme"
)

type detailTab int

const (
	tabSummary detailTab = iota
	tabRequest
	tabResponse
	tabHeaders
	tabMetrics
	tabCurl
	tabCount
)

func (t detailTab) String() string {
	switch t {
	case tabSummary:
		return "Summary"
	case tabRequest:
		return "Request"
	case tabResponse:
		return "Response"
	case tabHeaders:
		return "Headers"
	case tabMetrics:
		return "Metrics"
	case tabCurl:
		return "cURL"
	default:
		return "?"
	}
}

// renderDetail renders tab for r at the given content width.
func renderDetail(r record.LogRecord, tab detailTab, s theme.Styles, width int) string {
	switch tab {
	case tabSummary:
		return renderSummary(r, s)
	case tabRequest:
		return renderBody("Request Body", r.RequestBodyText(), r.RequestHeaders, s, width)
	case tabResponse:
		return renderBody("Response Body", r.ResponseBodyText(), r.ResponseHeaders, s, width)
	case tabHeaders:
		return renderHeaderSection("Request Headers", r.RequestHeaders, s) + "\n\n" +
			renderHeaderSection("Response Headers", r.ResponseHeaders, s)
	case tabMetrics:
		return renderMetrics(r, s)
	case tabCurl:
		return s.Section.Render("cURL Command") + "\n\n" + s.Success.Render(export.AsCurl(r))
	default:
		return ""
	}
}

func statusLabel(code int) string {
	if code == 0 {
		return "PENDING"
	}
	return fmt.Sprintf("%d", code)
}

func detailRows(s theme.Styles, rows [][2]string) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(s.Muted.Render(fmt.Sprintf("%-15s", row[0]+":")))
		b.WriteString(s.Bold.Render(row[1]))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderSummary(r record.LogRecord, s theme.Styles) string {
	general := [][2]string{
		{"Host", r.Host()},
		{"Path", r.Path()},
	}
	if q := r.Query(); q != "" {
		general = append(general, [2]string{"Query", q})
	}
	general = append(general,
		[2]string{"Method", r.Method},
		[2]string{"Status", statusLabel(r.StatusCode)},
	)

	var b strings.Builder
	b.WriteString(s.Section.Render("General") + "\n")
	b.WriteString(detailRows(s, general))
	b.WriteString("\n" + s.Section.Render("Timing") + "\n")
	b.WriteString(detailRows(s, [][2]string{
		{"Timestamp", r.FormattedTime()},
		{"Duration", fmt.Sprintf("%.3fs", r.Duration)},
	}))
	b.WriteString("\n" + s.Section.Render("Sizes") + "\n")
	b.WriteString(detailRows(s, [][2]string{
		{"Request Body", humanize.Bytes(uint64(len(r.RequestBodyText())))},
		{"Response Body", humanize.Bytes(uint64(len(r.ResponseBodyText())))},
	}))
	return strings.TrimRight(b.String(), "\n")
}

func renderMetrics(r record.LogRecord, s theme.Styles) string {
	category := record.CategoryOf(r.StatusCode)
	badge := s.StatusStyle(r.StatusCode).Render(statusLabel(r.StatusCode) + " · " + category.String())
	return s.Section.Render("Transaction Metrics") + "\n\n" + detailRows(s, [][2]string{
		{"Total Duration", fmt.Sprintf("%.4f s", r.Duration)},
		{"Start Time", r.FormattedTime()},
		{"Received", humanize.Time(r.Timestamp)},
	}) + s.Muted.Render(fmt.Sprintf("%-15s", "Status Code:")) + badge
}

func renderHeaderSection(title string, headers map[string]string, s theme.Styles) string {
	heading := s.Section.Render(title)
	if len(headers) == 0 {
		return heading + "\n" + s.Hint.Render("No headers available")
	}
	heading += s.Muted.Render(fmt.Sprintf("  %d items", len(headers)))

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(heading)
	for _, k := range keys {
		b.WriteString("\n" + s.Key.Render(k) + "\n  " + s.Normal.Render(headers[k]))
	}
	return b.String()
}

func renderBody(title, body string, headers map[string]string, s theme.Styles, width int) string {
	heading := s.Section.Render(title)
	if body == "" {
		return heading + "\n" + s.Hint.Render("Empty Body")
	}
	heading += s.Muted.Render("  " + humanize.Bytes(uint64(len(body))))
	return heading + "\n\n" + formatBody(body, contentType(headers), width)
}

func contentType(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "content-type") {
			return v
		}
	}
	return ""
}

// formatBody pretty-prints JSON bodies and highlights known content types.
// Bodies without a content type are treated as JSON when they parse as JSON.
func formatBody(body, contentType string, width int) string {
	lexerName := detectLexer(contentType)
	if lexerName == "text" && json.Valid([]byte(body)) {
		lexerName = "json"
	}
	src := body
	if lexerName == "json" {
		src = string(pretty.Pretty([]byte(body)))
	}
	out := highlight(strings.TrimRight(src, "\n"), lexerName)
	if width > 0 {
		out = lipgloss.NewStyle().Width(width).Render(out)
	}
	return out
}

// detectLexer maps Content-Type to a chroma lexer name.
func detectLexer(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return "json"
	case strings.Contains(ct, "html"):
		return "html"
	case strings.Contains(ct, "xml"):
		return "xml"
	case ct == "text/css":
		return "css"
	case strings.Contains(ct, "javascript"):
		return "javascript"
	default:
		return "text"
	}
}

func highlight(source, lexerName string) string {
	if lexerName == "text" {
		return source
	}
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get("monokai")
	if style == nil {
		style = chromastyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return buf.String()
}
