package sdk

import (
	"bytes"
	"sort"
	"strings"
)

// ParseMetadata decodes the engine's frame metadata block: one key=value
// pair per line. Lines without '=' are ignored.
func ParseMetadata(b []byte) map[string]string {
	b = bytes.TrimRight(b, "\x00")
	out := make(map[string]string)
	for _, line := range strings.Split(string(b), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}

// FormatMetadata encodes m in the format ParseMetadata reads, keys sorted.
func FormatMetadata(m map[string]string) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(m[k])
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
