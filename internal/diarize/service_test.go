package diarize_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/diarize"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
	"github.com/chico-council/meeting-pipeline/test/util"
)

type fakeDiarizer struct {
	turns []capability.SpeakerTurn
}

func (f *fakeDiarizer) Diarize(ctx context.Context, audioPath string) ([]capability.SpeakerTurn, error) {
	return f.turns, nil
}

type fakeChat struct{}

func (fakeChat) Generate(ctx context.Context, model, prompt string, opts capability.ChatOptions) (string, error) {
	return "[]", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 100}))
}

func newService(t *testing.T, diarizer capability.Diarizer) (*diarize.Service, *ledger.Store, string) {
	client := util.SetupTestDatabase(t)
	store := ledger.New(client.DB())
	transcriptDir := t.TempDir()

	return &diarize.Service{
		Diarizer:        diarizer,
		Chat:            fakeChat{},
		Ledger:          store,
		AudioDir:        t.TempDir(),
		TranscriptDir:   transcriptDir,
		PrimaryModel:    "whisper-large-v3",
		LLMModel:        "mistral:7b",
		CouncilMembers:  []string{"Council Member Ortiz"},
		SpeakerStoplist: nil,
		Log:             discardLogger(),
	}, store, transcriptDir
}

func writeTranscript(t *testing.T, dir string, clipID int64, result capability.TranscriptionResult) {
	t.Helper()
	data, err := json.Marshal(result)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "5_whisper_large_v3.json"), data, 0o644))
}

func TestRunBatch_AlreadyDiarizedMeetingIsSkipped(t *testing.T) {
	svc, store, dir := newService(t, &fakeDiarizer{})
	ctx := context.Background()

	require.NoError(t, store.InsertMeeting(ctx, ledger.Meeting{ClipID: 5, Title: "3/1/24 City Council Meeting"}))
	data, err := json.Marshal(diarize.PersistedResult{ClipID: 5, TotalSpeakers: 2})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "5_diarization.json"), data, 0o644))

	stats, err := svc.RunBatch(ctx, []int64{5}, 5)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Diarized)
	assert.Equal(t, 1, stats.Skipped)
}

func TestRunBatch_MissingTranscriptMarksFailedWithoutTouchingStatus(t *testing.T) {
	svc, store, _ := newService(t, &fakeDiarizer{})
	ctx := context.Background()

	require.NoError(t, store.InsertMeeting(ctx, ledger.Meeting{ClipID: 5, Title: "3/1/24 City Council Meeting", Status: ledger.StatusTranscribed}))

	stats, err := svc.RunBatch(ctx, []int64{5}, 5)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Diarized)
	assert.Equal(t, 1, stats.Failed)

	m, err := store.GetMeeting(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusTranscribed, m.Status, "diarize failure must not alter meeting status")
}

func TestRunBatch_SuccessfulRunSavesSegmentsAndResult(t *testing.T) {
	svc, store, dir := newService(t, &fakeDiarizer{turns: []capability.SpeakerTurn{{Start: 0, End: 10, SpeakerID: "SPEAKER_00"}}})
	ctx := context.Background()

	require.NoError(t, store.InsertMeeting(ctx, ledger.Meeting{ClipID: 5, Title: "3/1/24 City Council Meeting", Status: ledger.StatusTranscribed}))
	writeTranscript(t, dir, 5, capability.TranscriptionResult{
		Text: "I move to approve the agenda",
		Segments: []capability.TranscriptSegment{
			{Start: 0, End: 5, Text: "I move to approve the agenda"},
		},
	})

	stats, err := svc.RunBatch(ctx, []int64{5}, 5)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Diarized)
	assert.Equal(t, 0, stats.Failed)

	assert.True(t, diarize.HasDiarizationFile(dir, 5))
	result, err := diarize.LoadDiarizationResult(dir, 5)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Segments, 1)
}
