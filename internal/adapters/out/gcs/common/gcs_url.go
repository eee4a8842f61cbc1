// internal/adapters/out/gcs/common/gcs_url.go
package common

import (
	"fmt"
	"net/url"
	"strings"
)

// GCSPublicURL builds a public GCS URL.
// objectPath is path-escaped segment by segment; a leading "/" is dropped.
func GCSPublicURL(bucket, objectPath string) string {
	b := strings.TrimSpace(bucket)
	obj := strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	segs := strings.Split(obj, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b, strings.Join(segs, "/"))
}

// ParseGCSURL parses a GCS reference and returns (bucket, objectPath, ok).
//   - gs://<bucket>/<object>
//   - https://storage.googleapis.com/<bucket>/<object>
//   - https://storage.cloud.google.com/<bucket>/<object>
func ParseGCSURL(u string) (string, string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return "", "", false
	}

	var p string
	switch strings.ToLower(parsed.Scheme) {
	case "gs":
		p = parsed.Host + "/" + strings.TrimLeft(parsed.EscapedPath(), "/")
	case "http", "https":
		host := strings.ToLower(parsed.Host)
		if host != "storage.googleapis.com" && host != "storage.cloud.google.com" {
			return "", "", false
		}
		p = strings.TrimLeft(parsed.EscapedPath(), "/")
	default:
		return "", "", false
	}

	parts := strings.SplitN(p, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	objectPath, err := url.PathUnescape(parts[1])
	if err != nil {
		return "", "", false
	}
	return parts[0], objectPath, true
}
