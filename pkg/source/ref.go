package source

import (
	"fmt"
	"strings"
)

// ParseRef turns a user-provided reference into a Source. http:// and
// https:// references are downloaded with userAgent; everything else is a
// local file path.
func ParseRef(ref, userAgent string) (Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty archive reference")
	}
	if isURL(ref) {
		return &HTTPSource{URL: ref, UserAgent: userAgent}, nil
	}
	return &LocalSource{Path: ref}, nil
}

func isURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
