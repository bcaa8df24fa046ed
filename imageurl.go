package chatflow

import (
	"net/url"
	"strings"
)

// NormalizeImageURL unwraps Google image-search result links
// (google.com/imgres?imgurl=...) into the direct image address. Anything
// else, including URLs that fail to parse, is returned unchanged.
func NormalizeImageURL(raw string) string {
	if !strings.Contains(raw, "google.com/imgres") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if direct := u.Query().Get("imgurl"); direct != "" {
		return direct
	}
	return raw
}
