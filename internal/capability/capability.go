// Package capability defines the external, swappable services the pipeline
// depends on but does not implement itself: fetching a clip page,
// extracting audio from a stream, transcribing audio, diarizing speakers,
// and calling an LLM. Each is a narrow interface; the default
// implementations in this package talk to local HTTP services (an
// Ollama-style chat/transcription endpoint, a diarization sidecar) the way
// the reference pipeline talked to a local Ollama server and in-process
// Whisper model.
package capability

import (
	"context"
	"time"
)

// ClipPage is the raw, unparsed result of fetching a meeting's clip page.
type ClipPage struct {
	HTML       string
	FetchedAt  time.Time
}

// ClipFetcher retrieves the raw HTML of a meeting's clip page. A 404 (no
// such clip) is reported by returning ErrNotFound, not an error wrapping an
// HTTP status — callers distinguish "nothing at this ID" from a transient
// failure.
type ClipFetcher interface {
	FetchClipPage(ctx context.Context, clipID int64) (*ClipPage, error)
}

// AudioExtractor transcodes a meeting's stream URL into a local audio file
// at outputPath, the way the reference pipeline shells out to ffmpeg.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, streamURL, outputPath string) error
	// ProbeAudio reports whether a file at path is a valid, complete audio
	// file and its duration, used by the download-resume check.
	ProbeAudio(ctx context.Context, path string) (durationSeconds float64, ok bool)
}

// TranscriptSegment is one timed span of a transcription result.
type TranscriptSegment struct {
	Start float64
	End   float64
	Text  string
	Words []WordTiming
}

// WordTiming is a single word's timing within a transcript segment.
type WordTiming struct {
	Word  string
	Start float64
	End   float64
}

// TranscriptionResult is a single engine's transcription of an audio file.
type TranscriptionResult struct {
	Text                  string
	Segments              []TranscriptSegment
	Language              string
	ProcessingTimeSeconds float64
	Model                 string
}

// Transcriber runs automatic speech recognition against an audio file with
// a named model.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, model, language string) (*TranscriptionResult, error)
}

// SpeakerTurn is one diarized turn: a time window attributed to an opaque
// speaker label, with no name attached yet.
type SpeakerTurn struct {
	Start      float64
	End        float64
	SpeakerID  string
}

// Diarizer splits an audio file into speaker turns. Implementations may
// legitimately return an empty slice when no diarization backend is
// configured; callers must treat that as "no turns available", not an
// error, matching the reference pipeline's graceful no-op fallback.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]SpeakerTurn, error)
}

// ChatMessage is one turn in a chat-completion request.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions controls sampling for a single Chat call.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// Chat sends a prompt to an LLM and returns its raw text response. Callers
// are responsible for parsing structured content (typically JSON) out of
// the response; Chat itself never parses or validates the model's output.
type Chat interface {
	Generate(ctx context.Context, model, prompt string, opts ChatOptions) (string, error)
}
