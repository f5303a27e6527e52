package analyze

import (
	"fmt"
	"strings"

	"github.com/chico-council/meeting-pipeline/internal/diarize"
)

// enhanceWithSpeakers prepends an "Identified speakers" header to a
// segment's text when the meeting has diarization results naming at least
// one speaker, giving the LLM speaker context it wouldn't otherwise have
// from plain transcript text.
func enhanceWithSpeakers(text string, diarization *diarize.PersistedResult) string {
	if diarization == nil || len(diarization.SpeakerMapping) == 0 {
		return text
	}

	seen := map[string]bool{}
	var names []string
	for _, name := range diarization.SpeakerMapping {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return text
	}

	header := fmt.Sprintf("[Identified speakers: %s]\n\n", strings.Join(names, ", "))
	return header + text
}

// speakerSummary renders a short "identified speakers" block, mirroring the
// reference pipeline's per-meeting speaker roster summary. The analyze
// stage does not call it; segment prompts get their speaker header from
// enhanceWithSpeakers.
func speakerSummary(diarization *diarize.PersistedResult) string {
	if diarization == nil || len(diarization.SpeakerMapping) == 0 {
		return ""
	}

	lines := []string{"Identified speakers in this meeting:"}
	for _, name := range diarization.SpeakerMapping {
		if name == "" {
			continue
		}
		lines = append(lines, "  - "+name)
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}
