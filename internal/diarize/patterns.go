// Package diarize fuses several speaker-identification signals — regex
// pattern matches, agenda-item presenter correlation, batched LLM
// inference, and turn identifiers from a diarization backend — into a
// single per-segment speaker attribution.
package diarize

import (
	"regexp"
	"strings"

	"github.com/chico-council/meeting-pipeline/internal/capability"
)

// speakerPatterns are the regexes used to spot self-identification,
// direct address, motions, and staff introductions in a segment's text.
var speakerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:this is|I'm|I am)\s+(?:Council(?:member|man|woman)?|Mayor|Vice Mayor)?\s*(\w+(?:\s+\w+)?)`),
	regexp.MustCompile(`(?i)(?:thank you|thanks),?\s+(?:Council(?:member|man|woman)?|Mayor|Vice Mayor)?\s*(\w+)`),
	regexp.MustCompile(`(?i)(?:I move|I second|motion by)\s+(?:Council(?:member|man|woman)?|Mayor|Vice Mayor)?\s*(\w+)`),
	regexp.MustCompile(`(?i)(\w+(?:\s+\w+)?),?\s+(?:your|our)\s+(?:City Manager|City Attorney|Director|Chief)`),
}

// IdentifyFromPatterns scans each segment's text for a pattern match
// against a known council member's name, returning a map from segment
// index to the set of members matched in that segment (in match order).
// Names in stoplist are ignored even if a pattern technically matched,
// filtering the common false positives ("I" matching a bare pronoun, etc.)
func IdentifyFromPatterns(segments []capability.TranscriptSegment, councilMembers, stoplist []string) map[int][]string {
	stop := make(map[string]bool, len(stoplist))
	for _, s := range stoplist {
		stop[strings.ToLower(s)] = true
	}

	out := map[int][]string{}
	for i, seg := range segments {
		for _, pattern := range speakerPatterns {
			matches := pattern.FindAllStringSubmatch(seg.Text, -1)
			for _, m := range matches {
				if len(m) < 2 {
					continue
				}
				name := strings.TrimSpace(m[1])
				if name == "" || stop[strings.ToLower(name)] {
					continue
				}
				for _, member := range councilMembers {
					if strings.Contains(strings.ToLower(name), strings.ToLower(member)) {
						out[i] = append(out[i], member)
					}
				}
			}
		}
	}
	return out
}
