package transcribe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chico-council/meeting-pipeline/internal/capability"
)

// transcriptFilename mirrors the reference pipeline's get_transcript_path:
// the model name's path separators and dashes are folded to underscores so
// it's safe as a filename component.
func transcriptFilename(clipID int64, model string) string {
	safe := strings.NewReplacer("/", "_", "-", "_").Replace(model)
	return fmt.Sprintf("%d_%s.json", clipID, safe)
}

func saveTranscriptFile(dir string, clipID int64, model string, result *capability.TranscriptionResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}

	path := filepath.Join(dir, transcriptFilename(clipID, model))
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write transcript file: %w", err)
	}
	return nil
}
