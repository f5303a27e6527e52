package downloader_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chico-council/meeting-pipeline/internal/downloader"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
	"github.com/chico-council/meeting-pipeline/test/util"
)

type fakeExtractor struct {
	extracted    map[string]bool
	probeResults map[string]float64
	extractErr   error
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{extracted: map[string]bool{}, probeResults: map[string]float64{}}
}

func (f *fakeExtractor) ExtractAudio(ctx context.Context, streamURL, outputPath string) error {
	if f.extractErr != nil {
		return f.extractErr
	}
	f.extracted[outputPath] = true
	f.probeResults[outputPath] = 120
	return nil
}

func (f *fakeExtractor) ProbeAudio(ctx context.Context, path string) (float64, bool) {
	d, ok := f.probeResults[path]
	return d, ok
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunBatch_NoVideoURLMarksFailedWithoutCallingExtractor(t *testing.T) {
	client := util.SetupTestDatabase(t)
	store := ledger.New(client.DB())
	ctx := context.Background()

	require.NoError(t, store.InsertMeeting(ctx, ledger.Meeting{ClipID: 1, Title: "3/1/24 City Council Meeting"}))

	extractor := newFakeExtractor()
	svc := &downloader.Service{Extractor: extractor, Ledger: store, AudioDir: t.TempDir(), Log: discardLogger()}

	stats, err := svc.RunBatch(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Empty(t, extractor.extracted)

	m, err := store.GetMeeting(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, m.Status)
}

func TestRunBatch_SuccessfulDownloadUpdatesStatus(t *testing.T) {
	client := util.SetupTestDatabase(t)
	store := ledger.New(client.DB())
	ctx := context.Background()

	require.NoError(t, store.InsertMeeting(ctx, ledger.Meeting{
		ClipID: 2, Title: "3/1/24 City Council Meeting", VideoURL: "https://stream.example.gov/2.mp4",
	}))

	extractor := newFakeExtractor()
	svc := &downloader.Service{Extractor: extractor, Ledger: store, AudioDir: t.TempDir(), Log: discardLogger()}

	stats, err := svc.RunBatch(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Downloaded)
	assert.True(t, extractor.extracted[svc.AudioPath(2)])

	m, err := store.GetMeeting(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusDownloaded, m.Status)
}

func TestRunBatch_ExtractionFailureMarksFailed(t *testing.T) {
	client := util.SetupTestDatabase(t)
	store := ledger.New(client.DB())
	ctx := context.Background()

	require.NoError(t, store.InsertMeeting(ctx, ledger.Meeting{
		ClipID: 3, Title: "3/1/24 City Council Meeting", VideoURL: "https://stream.example.gov/3.mp4",
	}))

	extractor := newFakeExtractor()
	extractor.extractErr = assert.AnError
	svc := &downloader.Service{Extractor: extractor, Ledger: store, AudioDir: t.TempDir(), Log: discardLogger()}

	stats, err := svc.RunBatch(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	m, err := store.GetMeeting(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, m.Status)
}

func TestRunBatch_AlreadyDownloadedAudioSkipsReExtraction(t *testing.T) {
	client := util.SetupTestDatabase(t)
	store := ledger.New(client.DB())
	ctx := context.Background()

	require.NoError(t, store.InsertMeeting(ctx, ledger.Meeting{
		ClipID: 4, Title: "3/1/24 City Council Meeting", VideoURL: "https://stream.example.gov/4.mp4",
	}))

	extractor := newFakeExtractor()
	svc := &downloader.Service{Extractor: extractor, Ledger: store, AudioDir: t.TempDir(), Log: discardLogger()}
	extractor.probeResults[svc.AudioPath(4)] = 300

	stats, err := svc.RunBatch(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Downloaded)
	assert.False(t, extractor.extracted[svc.AudioPath(4)])
}
