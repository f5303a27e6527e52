package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
)

// FFmpegAudioExtractor shells out to ffmpeg/ffprobe, the same external
// tools the reference pipeline invoked as subprocesses.
type FFmpegAudioExtractor struct {
	Log *slog.Logger
}

// NewFFmpegAudioExtractor builds an AudioExtractor backed by the ffmpeg and
// ffprobe binaries on PATH.
func NewFFmpegAudioExtractor(log *slog.Logger) *FFmpegAudioExtractor {
	return &FFmpegAudioExtractor{Log: log}
}

func (f *FFmpegAudioExtractor) ExtractAudio(ctx context.Context, streamURL, outputPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", streamURL,
		"-vn", "-acodec", "libmp3lame", "-q:a", "2",
		"-map", "0:a:0", outputPath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg extract failed: %w: %s", err, stderr.String())
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("ffmpeg produced no output file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced an empty output file")
	}
	return nil
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeOutput struct {
	Format ffprobeFormat `json:"format"`
}

func (f *FFmpegAudioExtractor) ProbeAudio(ctx context.Context, path string) (float64, bool) {
	if _, err := os.Stat(path); err != nil {
		return 0, false
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet", "-print_format", "json", "-show_format", path)
	out, err := cmd.Output()
	if err != nil {
		f.Log.Warn("ffprobe failed", "path", path, "error", err)
		return 0, false
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, false
	}

	duration, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil || duration <= 0 {
		return 0, false
	}
	return duration, true
}
