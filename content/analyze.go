package content

import (
	"regexp"
	"strings"
)

const wordsPerMinute = 200

var reVideo = regexp.MustCompile(`https?://(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]{11})`)

var reVideoPrefix = regexp.MustCompile(`^` + reVideo.String())

// EstimateReadTime returns the reading time of body in whole minutes, at
// 200 words per minute, never less than one.
func EstimateReadTime(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ExtractThumbnail picks a representative image for a post. A non-empty
// explicit image always wins. Otherwise the first YouTube link in body
// yields that video's thumbnail. ok is false when neither exists.
func ExtractThumbnail(body, explicitImage string) (url string, ok bool) {
	if explicitImage != "" {
		return explicitImage, true
	}
	if id, found := FindVideoID(body); found {
		return VideoThumbnailURL(id), true
	}
	return "", false
}

// FindVideoID returns the id of the first YouTube URL anywhere in text.
func FindVideoID(text string) (string, bool) {
	m := reVideo.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// VideoIDFromURL returns the video id when u starts with a YouTube watch or
// short-link URL.
func VideoIDFromURL(u string) (string, bool) {
	m := reVideoPrefix.FindStringSubmatch(u)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsVideoID reports whether id has the shape of a YouTube video id.
func IsVideoID(id string) bool {
	if len(id) != 11 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// VideoThumbnailURL returns the high-quality thumbnail URL for a video id.
func VideoThumbnailURL(id string) string {
	return "https://img.youtube.com/vi/" + id + "/hqdefault.jpg"
}
