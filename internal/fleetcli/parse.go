package fleetcli

import (
	"regexp"
	"strings"
	"unicode"
)

// headerScanLimit is how many non-blank lines are searched for a table header.
const headerScanLimit = 20

// Record is one list item scraped from tool output. Keys are lower-cased with
// punctuation collapsed to single spaces ("Connection Name" -> "connection name").
type Record map[string]string

// Get returns the first non-empty value among keys.
func (r Record) Get(keys ...string) string {
	for _, k := range keys {
		if v := r[k]; v != "" {
			return v
		}
	}
	return ""
}

// ParseList turns the output of a list invocation into records. Strategies
// are tried in order and the first non-empty result wins; nil means nothing
// could be parsed. Parse failures are never reported.
func ParseList(raw string) []Record {
	return ParseOutput(raw, "")
}

// ParseOutput parses a list invocation whose streams were captured
// separately. The table and JSON strategies only see stdout; the debug dump,
// which the tool writes to stderr, is searched in both.
func ParseOutput(stdout, stderr string) []Record {
	text := stripTraceLines(stdout)

	if !looksLikeJSON(text) {
		if records, headerFound := parseColumnTable(text); len(records) > 0 {
			return records
		} else if !headerFound {
			if records := parseWhitespaceRows(text); len(records) > 0 {
				return records
			}
		}
	}
	if records := parseJSONArray(text); len(records) > 0 {
		return records
	}
	if stderr == "" {
		return parseDebugJSON(stdout)
	}
	return parseDebugJSON(stdout + "\n" + stderr)
}

func looksLikeJSON(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")
}

// stripTraceLines drops every debug trace line, request lines and body
// dumps alike, so none can be mistaken for rows.
func stripTraceLines(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0:0]
	for _, line := range lines {
		if isTraceLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if isBlank(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// isDivider reports whether line consists only of rule characters and
// contains at least one dash-like character.
func isDivider(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	dash := false
	for _, r := range trimmed {
		switch {
		case r == '-' || r == '_' || r == '=' || r == '─' || r == '━' || r == '═':
			dash = true
		case r == '+' || r == '|' || r == ' ' || r == '\t':
		case r >= 0x2500 && r <= 0x257F:
			dash = true
		default:
			return false
		}
	}
	return dash
}

var columnGap = regexp.MustCompile(`\t+|\s{2,}`)

// splitColumns splits line on tabs or runs of two or more spaces.
func splitColumns(line string) []string {
	parts := columnGap.Split(strings.TrimSpace(line), -1)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isHeaderWord reports whether token reads like a column title: letters,
// optionally joined by spaces or common punctuation, with no digits.
func isHeaderWord(token string) bool {
	letters := false
	for _, r := range token {
		switch {
		case unicode.IsLetter(r):
			letters = true
		case r == ' ' || r == '_' || r == '-' || r == '.' || r == '/' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return letters
}

// looksLikeHeader reports whether tokens can be a table header on their own,
// without a divider underneath.
func looksLikeHeader(tokens []string) bool {
	if len(tokens) < 2 {
		return false
	}
	for _, t := range tokens {
		if !isHeaderWord(t) {
			return false
		}
	}
	return true
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeHeader lower-cases name and collapses punctuation and whitespace
// runs into one space.
func normalizeHeader(name string) string {
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(name), " "))
}

// span is a half-open rune range of one column in a divider line.
type span struct {
	start, end int
}

// dividerSpans returns the column ranges of a divider line such as
// "---  -------", one per run of non-space characters.
func dividerSpans(line string) []span {
	runes := []rune(line)
	var spans []span
	start := -1
	for i, r := range runes {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				spans = append(spans, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(runes)})
	}
	return spans
}

// sliceBySpans cuts line into columns using divider spans. The last column
// runs to the end of the line.
func sliceBySpans(line string, spans []span) []string {
	runes := []rune(line)
	out := make([]string, 0, len(spans))
	for i, s := range spans {
		if s.start >= len(runes) {
			break
		}
		end := len(runes)
		if i < len(spans)-1 && spans[i+1].start < end {
			end = spans[i+1].start
		}
		out = append(out, strings.TrimSpace(string(runes[s.start:end])))
	}
	return out
}

// headerBySpans names the divider columns from a header whose titles may be
// separated by a single space. Each word goes to the column under it.
func headerBySpans(line string, spans []span) []string {
	if fields := strings.Fields(line); len(fields) == len(spans) {
		return fields
	}
	names := make([]string, len(spans))
	runes := []rune(line)
	for i := 0; i < len(runes); {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && !unicode.IsSpace(runes[i]) {
			i++
		}
		word := string(runes[start:i])
		col := nearestSpan(spans, start)
		if names[col] != "" {
			names[col] += " "
		}
		names[col] += word
	}
	return names
}

// nearestSpan returns the column containing pos, or the closest one when
// pos falls in a gap.
func nearestSpan(spans []span, pos int) int {
	best, bestDist := 0, -1
	for i, s := range spans {
		dist := 0
		switch {
		case pos < s.start:
			dist = s.start - pos
		case pos >= s.end:
			dist = pos - s.end + 1
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// findHeader locates the header within the first headerScanLimit lines. It
// returns the header index and, when the header is underlined, the divider
// spans.
func findHeader(lines []string) (int, []span, bool) {
	limit := len(lines)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		if isDivider(lines[i]) {
			continue
		}
		underlined := i+1 < len(lines) && isDivider(lines[i+1])
		if underlined {
			spans := dividerSpans(lines[i+1])
			if len(spans) >= 2 || len(splitColumns(lines[i])) >= 2 {
				return i, spans, true
			}
			continue
		}
		if looksLikeHeader(splitColumns(lines[i])) {
			return i, nil, true
		}
	}
	return 0, nil, false
}

// parseColumnTable parses a header-plus-rows table. headerFound is true when
// a header was located, even if no rows followed.
func parseColumnTable(text string) (records []Record, headerFound bool) {
	lines := nonBlankLines(text)
	idx, spans, ok := findHeader(lines)
	if !ok {
		return nil, false
	}

	header := splitColumns(lines[idx])
	if len(spans) >= 2 && len(spans) > len(header) {
		header = headerBySpans(lines[idx], spans)
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = normalizeHeader(h)
	}

	body := lines[idx+1:]
	if len(body) > 0 && isDivider(body[0]) {
		body = body[1:]
	}

	for _, line := range body {
		if isDivider(line) {
			continue
		}
		values := splitColumns(line)
		if len(values) < len(keys) && len(spans) >= 2 {
			values = sliceBySpans(line, spans)
		}
		if rec := zipRecord(keys, values); len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records, true
}

// zipRecord pairs keys with values. Missing values leave their keys absent;
// surplus values are joined into the last column.
func zipRecord(keys, values []string) Record {
	if len(values) > len(keys) && len(keys) > 0 {
		last := len(keys) - 1
		values = append(values[:last:last], strings.Join(values[last:], " "))
	}
	rec := Record{}
	for i, v := range values {
		if i >= len(keys) || v == "" || keys[i] == "" {
			continue
		}
		rec[keys[i]] = v
	}
	return rec
}

// fallbackKeys are the synthetic column names used by parseWhitespaceRows.
var fallbackKeys = []string{"id", "name", "secondary id"}

var noticePrefixes = []string{"===", "›", "▸", "!", "Warning:", "Error:", "No "}

// isNotice reports whether line is a human message rather than a row, such as
// "=== Connections" or "No connections found.".
func isNotice(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, p := range noticePrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, ":")
}

// parseWhitespaceRows treats each remaining line as a row whose first three
// whitespace-separated tokens are the id, name and secondary id.
func parseWhitespaceRows(text string) []Record {
	var records []Record
	for _, line := range nonBlankLines(text) {
		if isDivider(line) || isNotice(line) || looksLikeJSON(line) {
			continue
		}
		if looksLikeHeader(splitColumns(line)) {
			continue
		}
		fields := strings.Fields(line)
		rec := Record{}
		for i, f := range fields {
			if i >= len(fallbackKeys) {
				break
			}
			rec[fallbackKeys[i]] = f
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records
}
