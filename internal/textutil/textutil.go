// Package textutil holds small, stateless text helpers shared across
// stages: sentence-aware chunking for long transcripts, duration
// formatting, and filename sanitization.
package textutil

import (
	"fmt"
	"regexp"
	"strings"
)

var sentenceBoundary = regexp.MustCompile(`(?:[.!?])\s+`)

// ChunkText splits text into chunks no longer than maxChars, preferring to
// break on sentence boundaries. A single sentence longer than maxChars is
// further split on word boundaries so no chunk ever exceeds the limit.
func ChunkText(text string, maxChars int) []string {
	if len(text) <= maxChars {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	sentences := splitSentences(text)
	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence)+1 > maxChars {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}

		if len(sentence) > maxChars {
			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimSpace(current.String()))
				current.Reset()
			}
			chunks = append(chunks, chunkByWords(sentence, maxChars)...)
			continue
		}

		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

func splitSentences(text string) []string {
	idxs := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(idxs) == 0 {
		return []string{text}
	}

	var out []string
	start := 0
	for _, idx := range idxs {
		out = append(out, text[start:idx[1]])
		start = idx[1]
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func chunkByWords(text string, maxChars int) []string {
	words := strings.Fields(text)
	var chunks []string
	var current strings.Builder

	for _, word := range words {
		if current.Len() > 0 && current.Len()+len(word)+1 > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// FormatDuration renders a duration in seconds as "Hh Mm Ss", omitting
// leading zero units.
func FormatDuration(totalSeconds int) string {
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// SecondsToTimestamp renders seconds as an "HH:MM:SS" clip timestamp.
func SecondsToTimestamp(totalSeconds float64) string {
	total := int(totalSeconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// TimestampToSeconds parses an "HH:MM:SS" or "MM:SS" clip timestamp back
// into seconds. Returns 0 if ts is malformed.
func TimestampToSeconds(ts string) float64 {
	parts := strings.Split(ts, ":")
	var total float64
	for _, p := range parts {
		var v float64
		if _, err := fmt.Sscanf(p, "%f", &v); err != nil {
			return 0
		}
		total = total*60 + v
	}
	return total
}

var filenameForbidden = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename strips characters that are illegal in filenames on
// common filesystems, trims trailing dots and spaces, and truncates to 200
// characters.
func SanitizeFilename(name string) string {
	cleaned := filenameForbidden.ReplaceAllString(name, "")
	cleaned = strings.TrimRight(cleaned, ". ")
	if len(cleaned) > 200 {
		cleaned = cleaned[:200]
	}
	return cleaned
}
