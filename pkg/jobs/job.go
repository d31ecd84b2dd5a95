package jobs

import (
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	JobTypeScan = "scan"

	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ScanJobData is the payload of a scan job.
type ScanJobData struct {
	LibraryID string `json:"libraryId"`
}

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID         int          `bun:"id,pk,autoincrement" json:"id"`
	Type       string       `bun:"type,notnull" json:"type"`
	Status     string       `bun:"status,notnull" json:"status"`
	LibraryID  string       `bun:"library_id" json:"libraryId"`
	ProcessID  *string      `bun:"process_id" json:"processId"`
	Data       string       `bun:"data" json:"-"`
	DataParsed *ScanJobData `bun:"-" json:"data"`
	Error      string       `bun:"error" json:"error,omitempty"`
	CreatedAt  time.Time    `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt  time.Time    `bun:"updated_at,notnull" json:"updatedAt"`
}

// UnmarshalData parses the stored JSON payload into DataParsed.
func (j *Job) UnmarshalData() error {
	if j.Data == "" {
		return nil
	}
	j.DataParsed = &ScanJobData{}
	return errors.WithStack(json.Unmarshal([]byte(j.Data), j.DataParsed))
}
