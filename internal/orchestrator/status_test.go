package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chico-council/meeting-pipeline/internal/config"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
	"github.com/chico-council/meeting-pipeline/internal/orchestrator"
	"github.com/chico-council/meeting-pipeline/test/util"
)

func TestStatus_ComputesETAFromBacklogAndEstimates(t *testing.T) {
	client := util.SetupTestDatabase(t)
	store := ledger.New(client.DB())
	ctx := context.Background()

	require.NoError(t, store.InsertMeeting(ctx, ledger.Meeting{ClipID: 1, Title: "3/1/24 City Council Meeting"}))
	require.NoError(t, store.InsertMeeting(ctx, ledger.Meeting{ClipID: 2, Title: "3/8/24 City Council Meeting", Status: ledger.StatusDownloaded}))

	domain := config.DefaultDomainConfig()
	domain.Estimates.DownloadMinutes = 5
	domain.Estimates.TranscribeMinutes = 10

	o := &orchestrator.Orchestrator{Ledger: store, Domain: domain}

	st, err := o.Status(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, st.Stats.TotalMeetings)
	assert.Equal(t, 15*time.Minute, st.ETARemaining)
}

func TestStatus_EmptyLedgerHasZeroETA(t *testing.T) {
	client := util.SetupTestDatabase(t)
	store := ledger.New(client.DB())

	o := &orchestrator.Orchestrator{Ledger: store, Domain: config.DefaultDomainConfig()}

	st, err := o.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, st.Stats.TotalMeetings)
	assert.Equal(t, time.Duration(0), st.ETARemaining)
}
