package collector

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"

	"allure-reporter/internal/allure"
)

// HistoryID derives the id Allure uses to correlate a scenario across runs
// and across retries: hex(blake2b-256(project + "_" + fullName)).
func HistoryID(project, fullName string) string {
	sum := blake2b.Sum256([]byte(project + "_" + fullName))
	return hex.EncodeToString(sum[:])
}

// statusDetails converts host error info. An empty message falls back to
// the error type name, followed by the failing source line when known.
func statusDetails(e *ErrorInfo) *allure.StatusDetails {
	if e == nil {
		return nil
	}
	typeName := e.Type
	if typeName == "" {
		typeName = "Error"
	}

	message := e.Message
	if message == "" {
		message = typeName
		if line := strings.TrimSpace(e.Line); line != "" {
			message += ": " + line
		}
	}

	trace := e.Trace
	if trace == "" {
		trace = typeName + ": " + message
	}
	return &allure.StatusDetails{Message: message, Trace: trace}
}

// formatScope renders scope variables one per block:
//
//	    name:
//	"value as indented JSON"
//
// Keys are sorted. Values that cannot be rendered as JSON use their %#v form.
func formatScope(scope map[string]any) string {
	keys := make([]string, 0, len(scope))
	for k := range scope {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s:\n%s\n\n", k, scopeValue(scope[k]))
	}
	return b.String()
}

func scopeValue(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
