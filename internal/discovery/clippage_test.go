package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClipPage_ExtractsTitleURLDurationAndAgendaItems(t *testing.T) {
	rawHTML := `<html><head><title>3/1/24 City Council Meeting</title>
<script>var video_url = "https://stream.example.com/clip1.m3u8"; var duration = 3600;</script>
</head><body>
<source type="application/x-mpegurl" src="https://stream.example.com/fallback.m3u8">
<div class="index-point" time="0" data-id="101">1. Call to Order</div>
<div class="index-point" time="120" data-id="102">2. Public Comment</div>
</body></html>`

	page, ok := ParseClipPage(rawHTML)

	require.True(t, ok)
	assert.Equal(t, "3/1/24 City Council Meeting", page.Title)
	assert.Equal(t, "https://stream.example.com/fallback.m3u8", page.VideoURL)
	require.NotNil(t, page.DurationSeconds)
	assert.Equal(t, 3600, *page.DurationSeconds)
	require.Len(t, page.AgendaItems, 2)
	assert.Equal(t, "1", page.AgendaItems[0].ItemNumber)
	assert.Equal(t, "Call to Order", page.AgendaItems[0].Title)
	require.NotNil(t, page.AgendaItems[0].EndSeconds)
	assert.Equal(t, 120, *page.AgendaItems[0].EndSeconds)
	assert.Nil(t, page.AgendaItems[1].EndSeconds)
}

func TestParseClipPage_FallsBackToScriptVideoURLWhenNoSourceTag(t *testing.T) {
	rawHTML := `<html><head><title>3/1/24 City Council Meeting</title>
<script>video_url = 'https://stream.example.com/clip2.m3u8';</script></head><body></body></html>`

	page, ok := ParseClipPage(rawHTML)

	require.True(t, ok)
	assert.Equal(t, "https://stream.example.com/clip2.m3u8", page.VideoURL)
}

func TestParseClipPage_EmptyTitleIsRejected(t *testing.T) {
	_, ok := ParseClipPage(`<html><head><title></title></head><body></body></html>`)
	assert.False(t, ok)
}

func TestParseClipPage_PlaceholderPageIsRejected(t *testing.T) {
	_, ok := ParseClipPage(`<html><head><title>Video Unavailable</title></head><body></body></html>`)
	assert.False(t, ok)
}
