// Package command builds WebView CGI command strings. Every builder is a
// pure function of its inputs; sending and state updates happen elsewhere.
package command

import (
	"net/url"
	"strconv"
	"strings"

	"webview-cli/internal/client"
)

// query keeps parameters in insertion order; the device is sensitive to it.
type query []string

func (q *query) add(key, value string) {
	if value == "" {
		return
	}
	*q = append(*q, key+"="+url.QueryEscape(value))
}

func (q *query) addInt(key string, n int) {
	*q = append(*q, key+"="+strconv.Itoa(n))
}

func (q query) empty() bool { return len(q) == 0 }

func (q query) encode() string { return strings.Join(q, "&") }

func control(q query) string {
	return client.ControlCGI + "?" + q.encode()
}
