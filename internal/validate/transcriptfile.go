package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chico-council/meeting-pipeline/internal/capability"
)

// loadTranscriptFile reads back a transcript JSON file the transcribe stage
// wrote, using the same clipID_model.json naming convention. A missing file
// is not an error: callers treat a nil result as "no transcript from this
// model", the same way the secondary model's absence is handled.
func loadTranscriptFile(dir string, clipID int64, model string) (*capability.TranscriptionResult, error) {
	safe := strings.NewReplacer("/", "_", "-", "_").Replace(model)
	path := filepath.Join(dir, fmt.Sprintf("%d_%s.json", clipID, safe))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read transcript file %s: %w", path, err)
	}

	var result capability.TranscriptionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse transcript file %s: %w", path, err)
	}
	return &result, nil
}
