package analyze

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/chico-council/meeting-pipeline/internal/capability"
)

// runAnalysis sends prompt to model and tolerantly extracts a JSON object
// from the response. An unparseable response degrades to a raw_response
// wrapper rather than failing the segment's analysis.
func runAnalysis(ctx context.Context, chat capability.Chat, model, prompt string) map[string]any {
	response, err := chat.Generate(ctx, model, prompt, capability.ChatOptions{Temperature: 0.3, MaxTokens: 2000})
	if err != nil || response == "" {
		return nil
	}

	if result, ok := extractJSONObject(response); ok {
		return result
	}
	return map[string]any{"raw_response": response}
}

// extractJSONObject scans for the outermost balanced {...} span in response
// and unmarshals it into a map.
func extractJSONObject(response string) (map[string]any, bool) {
	start := strings.IndexByte(response, '{')
	if start < 0 {
		return nil, false
	}
	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				var out map[string]any
				if json.Unmarshal([]byte(response[start:i+1]), &out) == nil {
					return out, true
				}
				return nil, false
			}
		}
	}
	return nil, false
}
