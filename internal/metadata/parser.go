package metadata

import (
	"net/url"
	"strings"
)

const videoIdLength = 11

// ExtractVideoId pulls the 11-character video id out of the URL shapes the
// clients paste: watch?v=, youtu.be/, embed/, shorts/, or a bare id.
func ExtractVideoId(rawUrl string) (string, bool) {
	raw := strings.TrimSpace(rawUrl)
	if isVideoId(raw) {
		return raw, true
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if isVideoId(id) {
			return id, true
		}
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); isVideoId(id) {
			return id, true
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				id := strings.SplitN(rest, "/", 2)[0]
				if isVideoId(id) {
					return id, true
				}
			}
		}
	}

	return "", false
}

func isVideoId(s string) bool {
	if len(s) != videoIdLength {
		return false
	}
	for _, c := range s {
		valid := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
		if !valid {
			return false
		}
	}
	return true
}
