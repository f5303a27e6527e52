package diarize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chico-council/meeting-pipeline/internal/capability"
)

const llmBatchSize = 10

const llmIdentifyPrompt = `Analyze this city council meeting transcript and identify who is speaking in each segment.

Known Council Members: %s
Known Staff: City Manager, City Attorney, City Clerk, various Directors

Agenda Context: %s

Transcript Segments:
%s

For each segment, identify the likely speaker based on:
1. Self-identification ("This is Council Member X")
2. Being addressed ("Thank you, Mayor")
3. Speech patterns (motions = council members, presentations = staff)
4. Context from previous/next segments

Return ONLY valid JSON array with one object per segment:
[{"segment_index": 0, "speaker": "Council Member Brown", "confidence": 0.8, "reason": "Self-identified"}]`

// LLMIdentification is one segment's LLM-inferred speaker attribution.
type LLMIdentification struct {
	SegmentIndex int     `json:"segment_index"`
	Speaker      string  `json:"speaker"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason"`
}

// IdentifyWithLLM batches segments llmBatchSize at a time and asks model to
// infer a speaker per segment from context. A batch whose response can't
// be parsed as a JSON array is simply skipped — LLM identification is one
// of several signals, not a stage the pipeline can't proceed without.
func IdentifyWithLLM(ctx context.Context, chat capability.Chat, model string, segments []capability.TranscriptSegment, agendaContext string, councilMembers []string, log *slog.Logger) []LLMIdentification {
	if len(agendaContext) > 1000 {
		agendaContext = agendaContext[:1000]
	}

	var all []LLMIdentification
	for batchStart := 0; batchStart < len(segments); batchStart += llmBatchSize {
		end := batchStart + llmBatchSize
		if end > len(segments) {
			end = len(segments)
		}
		batch := segments[batchStart:end]

		var lines []string
		for i, seg := range batch {
			text := seg.Text
			if len(text) > 200 {
				text = text[:200]
			}
			lines = append(lines, fmt.Sprintf("[%d] (t=%.1fs): %s", batchStart+i, seg.Start, text))
		}

		prompt := fmt.Sprintf(llmIdentifyPrompt, strings.Join(councilMembers, ", "), agendaContext, strings.Join(lines, "\n"))

		response, err := chat.Generate(ctx, model, prompt, capability.ChatOptions{Temperature: 0.3, MaxTokens: 1000})
		if err != nil || response == "" {
			continue
		}

		batchResults, ok := parseIdentificationArray(response)
		if !ok {
			log.Warn("llm speaker identification batch unparseable", "batch_start", batchStart)
			continue
		}
		all = append(all, batchResults...)
	}
	return all
}

// parseIdentificationArray extracts the first top-level JSON array from a
// free-form LLM response.
func parseIdentificationArray(response string) ([]LLMIdentification, bool) {
	start := strings.IndexByte(response, '[')
	if start < 0 {
		return nil, false
	}
	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				var out []LLMIdentification
				if json.Unmarshal([]byte(response[start:i+1]), &out) == nil {
					return out, true
				}
				return nil, false
			}
		}
	}
	return nil, false
}
