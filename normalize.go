package epubtext

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	newlineRuns     = regexp.MustCompile(`\n+`)
	paragraphBreaks = regexp.MustCompile(`\n{2,}`)
	whitespaceRuns  = regexp.MustCompile(`[\s\p{Z}]+`)

	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Normalize rewrites raw chapter text for the given newline mode:
//
//   - single: every newline run becomes one break marker.
//   - double: runs of two or more newlines become one break marker; lone
//     newlines fold into the surrounding whitespace.
//   - none: every newline run becomes a space.
//
// Remaining whitespace runs collapse to a single space; whitespace next to a
// break is absorbed by it and consecutive breaks merge. Break markers already
// present in raw are kept as atomic tokens, so Normalize applied to its own
// output returns it unchanged. A marker made only of whitespace counts as
// present only where a whole whitespace run equals it; longer or shorter runs
// collapse like any other. An empty marker degrades breaks to spaces.
//
// An unknown mode returns a *ConfigError wrapping ErrInvalidNewlineMode.
func Normalize(raw string, mode NewlineMode, marker string) (string, error) {
	breaks, sep := newlineRuns, marker
	switch mode {
	case NewlineSingle:
	case NewlineDouble:
		breaks = paragraphBreaks
	case NewlineNone:
		sep = " "
	default:
		return "", &ConfigError{Field: "newline_mode", Value: string(mode), Err: ErrInvalidNewlineMode}
	}
	if sep == "" {
		sep = " "
	}

	text := strings.TrimSpace(lineEndings.Replace(raw))
	pieces := splitMarkers(text, marker)
	out := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		var segments []string
		for _, seg := range breaks.Split(piece, -1) {
			if seg = strings.TrimSpace(collapseSpace(seg)); seg != "" {
				segments = append(segments, seg)
			}
		}
		if len(segments) > 0 {
			out = append(out, strings.Join(segments, sep))
		}
	}
	return strings.Join(out, marker), nil
}

// splitMarkers cuts text at every break marker it already carries.
func splitMarkers(text, marker string) []string {
	switch {
	case marker == "":
		return []string{text}
	case strings.TrimSpace(marker) != "":
		return strings.Split(text, marker)
	}
	var pieces []string
	start := 0
	for _, loc := range whitespaceRuns.FindAllStringIndex(text, -1) {
		if text[loc[0]:loc[1]] == marker {
			pieces = append(pieces, text[start:loc[0]])
			start = loc[1]
		}
	}
	return append(pieces, text[start:])
}

// collapseSpace replaces every run of Unicode whitespace with one ASCII
// space.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}
