package models

import "time"

// AudioFile is the media view over one audio LibraryFile, enriched with
// track placement and probe-derived attributes. Probing is an external
// capability; its absence leaves the probe fields zero.
type AudioFile struct {
	Index     int           `json:"index"`
	Ino       uint64        `json:"ino"`
	Metadata  *FileMetadata `json:"metadata"`
	AddedAt   int64         `json:"addedAt"`
	UpdatedAt int64         `json:"updatedAt"`

	TrackNumFromMeta     *int `json:"trackNumFromMeta"`
	DiscNumFromMeta      *int `json:"discNumFromMeta"`
	TrackNumFromFilename *int `json:"trackNumFromFilename"`
	DiscNumFromFilename  *int `json:"discNumFromFilename"`

	// ManuallyVerified and Exclude are editorial flags; reconciliation must
	// never reset them.
	ManuallyVerified bool   `json:"manuallyVerified"`
	Invalid          bool   `json:"invalid"`
	Exclude          bool   `json:"exclude"`
	Error            string `json:"error,omitempty"`

	Format           string  `json:"format,omitempty"`
	Duration         float64 `json:"duration,omitempty"`
	BitRate          int     `json:"bitRate,omitempty"`
	Codec            string  `json:"codec,omitempty"`
	Channels         int     `json:"channels,omitempty"`
	ChannelLayout    string  `json:"channelLayout,omitempty"`
	Language         string  `json:"language,omitempty"`
	EmbeddedCoverArt string  `json:"embeddedCoverArt,omitempty"`
}

func NewAudioFileFromLibraryFile(lf *LibraryFile) *AudioFile {
	now := time.Now().UnixMilli()
	return &AudioFile{
		Ino:       lf.Ino,
		Metadata:  lf.Metadata.Clone(),
		AddedAt:   now,
		UpdatedAt: now,
	}
}

func (af *AudioFile) Inode() uint64 { return af.Ino }

func (af *AudioFile) SetInode(ino uint64) { af.Ino = ino }

func (af *AudioFile) FileMetadata() *FileMetadata { return af.Metadata }

// TrackNum returns the best-known track number, preferring embedded metadata
// over the filename heuristic. Zero means unknown.
func (af *AudioFile) TrackNum() int {
	if af.TrackNumFromMeta != nil {
		return *af.TrackNumFromMeta
	}
	if af.TrackNumFromFilename != nil {
		return *af.TrackNumFromFilename
	}
	return 0
}

// DiscNum returns the best-known disc number, preferring embedded metadata.
func (af *AudioFile) DiscNum() int {
	if af.DiscNumFromMeta != nil {
		return *af.DiscNumFromMeta
	}
	if af.DiscNumFromFilename != nil {
		return *af.DiscNumFromFilename
	}
	return 0
}
