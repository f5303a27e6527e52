package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkText_ShortTextIsOneChunk(t *testing.T) {
	chunks := ChunkText("Hello there.", 100)
	assert.Equal(t, []string{"Hello there."}, chunks)
}

func TestChunkText_EmptyTextYieldsNoChunks(t *testing.T) {
	assert.Empty(t, ChunkText("", 100))
}

func TestChunkText_LongTextStaysWithinLimit(t *testing.T) {
	text := strings.Repeat("This is a sentence. ", 50)
	chunks := ChunkText(text, 100)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100)
	}
}

func TestChunkText_SingleLongSentenceSplitsOnWords(t *testing.T) {
	text := strings.Repeat("word ", 100)
	chunks := ChunkText(text, 20)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 20)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{seconds: 5, want: "5s"},
		{seconds: 65, want: "1m 5s"},
		{seconds: 3661, want: "1h 1m 1s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds))
	}
}

func TestSecondsToTimestampAndBack(t *testing.T) {
	ts := SecondsToTimestamp(3725)
	assert.Equal(t, "01:02:05", ts)
	assert.InDelta(t, 3725.0, TimestampToSeconds(ts), 0.001)
}

func TestTimestampToSeconds_Malformed(t *testing.T) {
	assert.Equal(t, 0.0, TimestampToSeconds("not-a-timestamp"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "strips forbidden characters", input: `bad<>:"/\|?*name`, want: "badname"},
		{name: "trims trailing dots and spaces", input: "name.  ", want: "name"},
		{name: "ordinary name passes through", input: "ordinary-name_1", want: "ordinary-name_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}
