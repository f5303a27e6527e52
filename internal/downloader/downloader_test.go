package downloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAudioPath_BuildsMP3PathUnderAudioDir(t *testing.T) {
	s := &Service{AudioDir: "/data/audio"}
	assert.Equal(t, "/data/audio/42.mp3", s.AudioPath(42))
}
