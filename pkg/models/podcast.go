package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type PodcastMetadata struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Language    string   `json:"language"`
	FeedURL     string   `json:"feedUrl"`
	ReleaseDate string   `json:"releaseDate"`
}

// PodcastEpisode wraps one audio file as an episode.
type PodcastEpisode struct {
	ID          string     `json:"id"`
	Index       int        `json:"index"`
	Title       string     `json:"title"`
	AudioFile   *AudioFile `json:"audioFile"`
	PublishedAt int64      `json:"publishedAt"`
	AddedAt     int64      `json:"addedAt"`
	UpdatedAt   int64      `json:"updatedAt"`
}

// Podcast is the media payload of a podcast library item. Episodes are views
// over the item's audio library files, keyed back by inode.
type Podcast struct {
	Metadata  *PodcastMetadata  `json:"metadata"`
	CoverPath string            `json:"coverPath"`
	Tags      []string          `json:"tags"`
	Episodes  []*PodcastEpisode `json:"episodes"`
}

func NewPodcast() *Podcast {
	return &Podcast{Metadata: &PodcastMetadata{}}
}

func (p *Podcast) MediaType() string { return MediaTypePodcast }

func (p *Podcast) SetScanMetadata(meta *ScanMediaMetadata) {
	if meta == nil {
		return
	}
	p.Metadata.Title = meta.Title
	p.Metadata.Author = meta.Author
	p.Metadata.ReleaseDate = meta.PublishedYear
}

// AddEpisodeForLibraryFile wraps an audio library file as a new episode.
func (p *Podcast) AddEpisodeForLibraryFile(lf *LibraryFile) *PodcastEpisode {
	now := time.Now().UnixMilli()
	ep := &PodcastEpisode{
		ID:        "ep_" + uuid.NewString(),
		Index:     len(p.Episodes) + 1,
		Title:     strings.TrimSuffix(lf.Metadata.Filename, lf.Metadata.Ext),
		AudioFile: NewAudioFileFromLibraryFile(lf),
		AddedAt:   now,
		UpdatedAt: now,
	}
	p.Episodes = append(p.Episodes, ep)
	return ep
}

func (p *Podcast) HasMediaFiles() bool {
	for _, ep := range p.Episodes {
		if ep.AudioFile != nil {
			return true
		}
	}
	return false
}

func (p *Podcast) FindFileWithInode(ino uint64) MediaFile {
	for _, ep := range p.Episodes {
		if ep.AudioFile != nil && ep.AudioFile.Ino == ino {
			return ep.AudioFile
		}
	}
	return nil
}

func (p *Podcast) RemoveFileWithInode(ino uint64) bool {
	for i, ep := range p.Episodes {
		if ep.AudioFile != nil && ep.AudioFile.Ino == ino {
			p.Episodes = append(p.Episodes[:i], p.Episodes[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Podcast) Cover() string { return p.CoverPath }

func (p *Podcast) UpdateCover(path string) { p.CoverPath = path }

// RepairTrackList renumbers episodes after removals.
func (p *Podcast) RepairTrackList() {
	for i, ep := range p.Episodes {
		ep.Index = i + 1
	}
}

func (p *Podcast) SearchQuery(query string) bool {
	if strings.Contains(strings.ToLower(p.Metadata.Title), query) ||
		strings.Contains(strings.ToLower(p.Metadata.Author), query) {
		return true
	}
	for _, ep := range p.Episodes {
		if strings.Contains(strings.ToLower(ep.Title), query) {
			return true
		}
	}
	return false
}

func (p *Podcast) ToSummary() *MediaSummary {
	summary := &MediaSummary{
		Title:         p.Metadata.Title,
		Genres:        p.Metadata.Genres,
		Tags:          p.Tags,
		Language:      p.Metadata.Language,
		CoverPath:     p.CoverPath,
		NumMediaFiles: len(p.Episodes),
	}
	if p.Metadata.Author != "" {
		summary.Authors = []string{p.Metadata.Author}
	}
	return summary
}
