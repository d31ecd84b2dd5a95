package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPodcastEpisodes(t *testing.T) {
	t.Parallel()

	podcast := NewPodcast()
	assert.False(t, podcast.HasMediaFiles())

	first := podcast.AddEpisodeForLibraryFile(audioLibraryFile(1, "/Casts/Show/ep one.mp3"))
	second := podcast.AddEpisodeForLibraryFile(audioLibraryFile(2, "/Casts/Show/ep two.mp3"))

	assert.Contains(t, first.ID, "ep_")
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, 2, second.Index)
	assert.Equal(t, "ep one", first.Title)
	assert.True(t, podcast.HasMediaFiles())
	require.NotNil(t, podcast.FindFileWithInode(2))

	require.True(t, podcast.RemoveFileWithInode(1))
	podcast.RepairTrackList()
	require.Len(t, podcast.Episodes, 1)
	assert.Equal(t, 1, podcast.Episodes[0].Index)
	assert.Nil(t, podcast.FindFileWithInode(1))
}

func TestPodcastSearchQuery(t *testing.T) {
	t.Parallel()

	podcast := NewPodcast()
	podcast.Metadata.Title = "Hearth Radio"
	podcast.AddEpisodeForLibraryFile(audioLibraryFile(1, "/Casts/Show/Pilot Episode.mp3"))

	assert.True(t, podcast.SearchQuery("radio"))
	assert.True(t, podcast.SearchQuery("pilot"))
	assert.False(t, podcast.SearchQuery("cooking"))
}
