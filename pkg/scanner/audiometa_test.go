package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackAndDiscFromFilename(t *testing.T) {
	t.Parallel()

	intp := func(n int) *int { return &n }

	testCases := []struct {
		name     string
		filename string
		track    *int
		disc     *int
	}{
		{name: "leading track number", filename: "01 - Chapter One.mp3", track: intp(1)},
		{name: "trailing track number", filename: "Chapter - 104.mp3", track: intp(104)},
		{name: "disc and track", filename: "cd2 - 03.mp3", track: intp(3), disc: intp(2)},
		{name: "disc word with space", filename: "Disc 3 - 12.m4b", track: intp(12), disc: intp(3)},
		{name: "year is not a track", filename: "1984 - 02.mp3", track: intp(2)},
		{name: "no numbers", filename: "epilogue.mp3"},
		{name: "four digit number ignored", filename: "recording 2019.mp3"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			track, disc := TrackAndDiscFromFilename(tc.filename)
			assert.Equal(t, tc.track, track)
			assert.Equal(t, tc.disc, disc)
		})
	}
}
