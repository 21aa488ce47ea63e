package shoplist

import (
	"net/url"
	"strings"
)

// ShareQueryKey is the query parameter that carries a share id in links.
const ShareQueryKey = "list"

// ShareLink builds the link that opens shareID, e.g.
// https://example.com/?list=abc.
func ShareLink(baseURL, shareID string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return base + "/?" + url.Values{ShareQueryKey: {shareID}}.Encode()
}

// ParseShareRef extracts a share id from either a bare id or a share link.
// Links without a list parameter yield "".
func ParseShareRef(ref string) string {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return ""
	}
	if !strings.Contains(trimmed, "://") && !strings.HasPrefix(trimmed, "?") && !strings.HasPrefix(trimmed, "/?") {
		return trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	values := u.Query()[ShareQueryKey]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
