// Package media classifies files by type and splits names into stem and extension.
package media

import (
	"mime"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// videoRe matches video file extensions used to include media files.
	videoRe = regexp.MustCompile(`(?i)\.(mp4|mkv|avi|mov|wmv|flv|webm|mpeg|mpg|m4v|3gp|vob|ts|mts|m2ts|rmvb|divx|ogv)$`)

	// subtitleRe matches subtitle file extensions (case‑insensitive).
	subtitleRe = regexp.MustCompile(`(?i)\.(srt|sub|idx|ass|ssa|smi|vtt|sbv|sami|usf|stl|dks|pjs|jss|psb|rt|scc|cap|sup|dfxp|ttml)$`)

	// langPattern matches trailing language codes before subtitle extension: .en, .eng, .en-US.
	langPattern = regexp.MustCompile(`(\.[a-zA-Z]{2,3}(?:[-_][a-zA-Z]{2,4})?)$`)
)

// IsVideo reports whether filename is a video by extension. Extensions missing from
// the built-in list fall back to the system MIME table.
func IsVideo(filename string) bool {
	if videoRe.MatchString(filename) {
		return true
	}
	ext := filepath.Ext(filename)
	if ext == "" {
		return false
	}
	return strings.HasPrefix(mime.TypeByExtension(strings.ToLower(ext)), "video/")
}

// IsSubtitle reports whether filename has a recognized subtitle extension.
func IsSubtitle(filename string) bool {
	return subtitleRe.MatchString(filename)
}

// Extension returns the extension of filename including the dot. Subtitle files
// keep their language suffix, so "ep.en.srt" yields ".en.srt".
func Extension(filename string) string {
	if IsSubtitle(filename) {
		return subtitleSuffix(filename)
	}
	return filepath.Ext(filename)
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, Extension(base))
}

func subtitleSuffix(filename string) string {
	loc := subtitleRe.FindStringIndex(filename)
	if loc == nil {
		return ""
	}
	return langPattern.FindString(filename[:loc[0]]) + filename[loc[0]:]
}
