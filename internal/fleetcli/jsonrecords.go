package fleetcli

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TraceNamespace starts every line the tool prints when FLEET_DEBUG=link:http
// is set: request lines such as "fleet:link:http GET /connections 200" and
// response-body lines.
const TraceNamespace = "fleet:link:http"

// DebugLinePrefix starts every response-body line of a trace.
const DebugLinePrefix = TraceNamespace + " body"

// topLevelFields maps JSON keys of a list element to record keys.
var topLevelFields = map[string]string{
	"id":              "id",
	"status":          "status",
	"addon_id":        "add on",
	"type":            "type",
	"name":            "name",
	"developer_name":  "developer name",
	"connection_name": "connection name",
}

// orgFields maps keys of the nested "org" object.
var orgFields = map[string]string{
	"connection_name": "connection name",
	"id":              "org id",
	"instance_url":    "instance url",
	"type":            "org type",
	"username":        "username",
}

// isTraceLine reports whether line belongs to the debug trace namespace.
func isTraceLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, TraceNamespace) {
		return false
	}
	rest := trimmed[len(TraceNamespace):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == ':'
}

// isDebugLine reports whether line is part of a response-body dump.
func isDebugLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), DebugLinePrefix)
}

// debugRemainder returns what follows the debug prefix on line.
func debugRemainder(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), DebugLinePrefix))
}

// isDebugArrayOpener reports whether line opens a JSON array dump.
func isDebugArrayOpener(line string) bool {
	return isDebugLine(line) && debugRemainder(line) == "["
}

// parseJSONArray decodes text as a JSON array of objects. Anything else,
// including invalid JSON, yields nil.
func parseJSONArray(text string) []Record {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") {
		return nil
	}
	var elements []map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &elements); err != nil {
		return nil
	}
	return recordsFromJSON(elements)
}

// parseDebugJSON extracts the last JSON array dumped by debug tracing.
func parseDebugJSON(raw string) []Record {
	lines := strings.Split(raw, "\n")

	opener := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if isDebugArrayOpener(lines[i]) {
			opener = i
			break
		}
	}
	if opener < 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("[")
	closed := false
	for _, line := range lines[opener+1:] {
		if !isDebugLine(line) {
			continue
		}
		rest := debugRemainder(line)
		b.WriteString(rest)
		b.WriteString("\n")
		if rest == "]" {
			closed = true
			break
		}
	}
	if !closed {
		return nil
	}
	return parseJSONArray(b.String())
}

func recordsFromJSON(elements []map[string]interface{}) []Record {
	var records []Record
	for _, el := range elements {
		if rec := recordFromJSON(el); len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records
}

// recordFromJSON flattens the known fields of one list element.
func recordFromJSON(el map[string]interface{}) Record {
	rec := Record{}
	for jsonKey, key := range topLevelFields {
		if v := stringify(el[jsonKey]); v != "" {
			rec[key] = v
		}
	}
	if org, ok := el["org"].(map[string]interface{}); ok {
		for jsonKey, key := range orgFields {
			if v := stringify(org[jsonKey]); v != "" {
				rec[key] = v
			}
		}
	}
	return rec
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	case map[string]interface{}, []interface{}:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
