package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chico-council/meeting-pipeline/internal/capability"
)

// Tier1Result is a fast coherence-check verdict on a single segment.
type Tier1Result struct {
	Score           int      `json:"score"`
	Issues          []string `json:"issues"`
	NeedsDeepReview bool     `json:"needs_deep_review"`
}

// Tier2Result is a deep coherence-check verdict on a single segment.
type Tier2Result struct {
	CoherenceScore         int               `json:"coherence_score"`
	PreferredTranscription string            `json:"preferred_transcription"`
	Issues                 []string          `json:"issues"`
	Corrections            map[string]string `json:"corrections"`
	NeedsHumanReview       bool              `json:"needs_human_review"`
}

const (
	maxTier1SegmentChars = 2000
	maxTier2TextChars    = 1500
)

// runTier1 runs the fast validation pass on a single segment's text,
// degrading to a neutral score and a review flag if the model's response
// can't be parsed rather than failing the whole validation stage.
func runTier1(ctx context.Context, chat capability.Chat, model, segmentText, agendaTitle string, members, terms []string) Tier1Result {
	if len(segmentText) > maxTier1SegmentChars {
		segmentText = segmentText[:maxTier1SegmentChars] + "..."
	}
	if agendaTitle == "" {
		agendaTitle = "General meeting content"
	}

	prompt := fmt.Sprintf(fastValidationPrompt, agendaTitle, segmentText, strings.Join(members, ", "), strings.Join(terms, ", "))

	response, err := chat.Generate(ctx, model, prompt, capability.ChatOptions{Temperature: 0.2, MaxTokens: 500})
	if err != nil || response == "" {
		return Tier1Result{Score: 50, Issues: []string{"failed to parse validation response"}, NeedsDeepReview: true}
	}

	var result Tier1Result
	if !parseJSONResponse(response, &result) {
		return Tier1Result{Score: 50, Issues: []string{"failed to parse validation response"}, NeedsDeepReview: true}
	}
	if result.Score == 0 {
		result.Score = 50
	}
	return result
}

// runTier2 runs the deep validation pass, comparing the primary and
// secondary engine texts for one flagged segment.
func runTier2(ctx context.Context, chat capability.Chat, model, segmentText, agendaTitle, primaryText, secondaryText string, members, terms []string) Tier2Result {
	segmentText = truncate(segmentText, maxTier2TextChars)
	primaryText = truncate(primaryText, maxTier2TextChars)
	secondaryText = truncate(secondaryText, maxTier2TextChars)
	if agendaTitle == "" {
		agendaTitle = "General meeting content"
	}

	prompt := fmt.Sprintf(deepValidationPrompt, agendaTitle, segmentText, primaryText, secondaryText, strings.Join(members, ", "), strings.Join(terms, ", "))

	response, err := chat.Generate(ctx, model, prompt, capability.ChatOptions{Temperature: 0.2, MaxTokens: 500})
	if err != nil || response == "" {
		return Tier2Result{CoherenceScore: 50, PreferredTranscription: "primary", Issues: []string{"failed to parse deep validation response"}, NeedsHumanReview: true}
	}

	var result Tier2Result
	if !parseJSONResponse(response, &result) {
		return Tier2Result{CoherenceScore: 50, PreferredTranscription: "primary", Issues: []string{"failed to parse deep validation response"}, NeedsHumanReview: true}
	}
	if result.CoherenceScore == 0 {
		result.CoherenceScore = 50
	}
	if result.PreferredTranscription == "" {
		result.PreferredTranscription = "primary"
	}
	return result
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// parseJSONResponse extracts the first top-level JSON object from an LLM's
// free-form response and unmarshals it into out. Models routinely wrap
// their JSON in prose or code fences, so this scans for the outermost
// balanced {...} span rather than assuming the whole response is JSON.
func parseJSONResponse(response string, out any) bool {
	start := strings.IndexByte(response, '{')
	if start < 0 {
		return false
	}
	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := response[start : i+1]
				if json.Unmarshal([]byte(candidate), out) == nil {
					return true
				}
				return false
			}
		}
	}
	return false
}
