// Package sanitize strips markup from client supplied strings before they
// reach room state or other peers.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dkeye/Signal/internal/domain"
)

var policy = bluemonday.StrictPolicy()

// String removes every tag and trims surrounding space.
// The result stays HTML escaped.
func String(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}

// Value sanitizes strings nested anywhere inside a decoded JSON value.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[String(k)] = Value(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Value(val)
		}
		return out
	default:
		return v
	}
}

func PeerInfo(info domain.PeerInfo) domain.PeerInfo {
	out := make(domain.PeerInfo, len(info))
	for k, v := range info {
		out[String(k)] = Value(v)
	}
	return out
}
