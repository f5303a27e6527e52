package validate_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
	"github.com/chico-council/meeting-pipeline/internal/validate"
	"github.com/chico-council/meeting-pipeline/test/util"
)

type fakeChat struct {
	response string
}

func (f *fakeChat) Generate(ctx context.Context, model, prompt string, opts capability.ChatOptions) (string, error) {
	return f.response, nil
}

func newService(t *testing.T, chat capability.Chat) (*validate.Service, *ledger.Store, string) {
	client := util.SetupTestDatabase(t)
	store := ledger.New(client.DB())
	dir := t.TempDir()

	return &validate.Service{
		Chat:               chat,
		Ledger:             store,
		TranscriptDir:      dir,
		PrimaryModel:       "whisper-large-v3",
		SecondaryModel:     "whisper-medium",
		FastModel:          "mistral:7b",
		DeepModel:          "mistral:7b",
		CouncilMembers:     []string{"Council Member Ortiz"},
		MunicipalTerms:     []string{"ordinance"},
		WERThreshold:       0.3,
		CoherenceThreshold: 60,
		Tier1SegmentLimit:  10,
		Tier2SegmentLimit:  5,
		Log:                slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 100})),
	}, store, dir
}

// writeTranscriptFile writes a transcript using the same clipID_model.json
// naming convention the transcribe stage and loadTranscriptFile both use.
func writeTranscriptFile(t *testing.T, dir string, clipID int64, model string, result capability.TranscriptionResult) {
	t.Helper()
	safe := strings.NewReplacer("/", "_", "-", "_").Replace(model)
	data, err := json.Marshal(result)
	require.NoError(t, err)
	path := filepath.Join(dir, fmt.Sprintf("%d_%s.json", clipID, safe))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestRunBatch_NoPendingMeetingsDoesNothing(t *testing.T) {
	svc, _, _ := newService(t, &fakeChat{response: `{"score": 90}`})

	stats, err := svc.RunBatch(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Validated)
	assert.Equal(t, 0, stats.Failed)
}

func TestRunBatch_MissingPrimaryTranscriptMarksFailed(t *testing.T) {
	svc, store, _ := newService(t, &fakeChat{response: `{"score": 90}`})
	ctx := context.Background()

	require.NoError(t, store.InsertMeeting(ctx, ledger.Meeting{ClipID: 1, Title: "3/1/24 City Council Meeting", Status: ledger.StatusTranscribed}))

	stats, err := svc.RunBatch(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Validated)
	assert.Equal(t, 1, stats.Failed)

	m, err := store.GetMeeting(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, m.Status)
}

func TestRunBatch_HighCoherenceTranscriptValidatesCleanly(t *testing.T) {
	svc, store, dir := newService(t, &fakeChat{response: `{"score": 95, "issues": [], "needs_deep_review": false}`})
	ctx := context.Background()

	require.NoError(t, store.InsertMeeting(ctx, ledger.Meeting{ClipID: 2, Title: "3/1/24 City Council Meeting", Status: ledger.StatusTranscribed}))

	writeTranscriptFile(t, dir, 2, "whisper-large-v3", capability.TranscriptionResult{
		Text: "the meeting is called to order",
		Segments: []capability.TranscriptSegment{
			{Start: 0, End: 3, Text: "the meeting is called to order"},
		},
	})

	stats, err := svc.RunBatch(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Validated)
	assert.Equal(t, 0, stats.Failed)

	m, err := store.GetMeeting(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusValidated, m.Status)
}
