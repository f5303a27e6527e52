package capability_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chico-council/meeting-pipeline/internal/capability"
)

func TestHTTPTranscriber_Transcribe_SuccessParsesSegmentsAndWords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transcribe", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"text":     "call to order",
			"language": "en",
			"segments": []map[string]any{
				{
					"start": 0.0, "end": 2.0, "text": "call to order",
					"words": []map[string]any{
						{"word": "call", "start": 0.0, "end": 0.5},
						{"word": "to", "start": 0.5, "end": 0.7},
					},
				},
			},
		})
	}))
	defer server.Close()

	tr := capability.NewHTTPTranscriber(server.URL, 5*time.Second, discardLogger())

	result, err := tr.Transcribe(context.Background(), "/audio/1.mp3", "whisper-large-v3", "en")

	require.NoError(t, err)
	assert.Equal(t, "call to order", result.Text)
	assert.Equal(t, "whisper-large-v3", result.Model)
	require.Len(t, result.Segments, 1)
	assert.Len(t, result.Segments[0].Words, 2)
	assert.Equal(t, "call", result.Segments[0].Words[0].Word)
}

func TestHTTPTranscriber_Transcribe_NonOKStatusReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tr := capability.NewHTTPTranscriber(server.URL, 5*time.Second, discardLogger())

	_, err := tr.Transcribe(context.Background(), "/audio/1.mp3", "whisper-large-v3", "en")

	assert.Error(t, err)
}

func TestHTTPTranscriber_Transcribe_UnreachableServerReturnsError(t *testing.T) {
	tr := capability.NewHTTPTranscriber("http://127.0.0.1:1", 100*time.Millisecond, discardLogger())

	_, err := tr.Transcribe(context.Background(), "/audio/1.mp3", "whisper-large-v3", "en")

	assert.Error(t, err)
}
