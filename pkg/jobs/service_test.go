package jobs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	svc := NewService(db)
	require.NoError(t, svc.Init(context.Background()))
	return svc
}

func TestCreateAndRetrieveJob(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	job := &Job{
		Type:       JobTypeScan,
		DataParsed: &ScanJobData{LibraryID: "lib_1"},
	}
	require.NoError(t, svc.CreateJob(ctx, job))
	assert.NotZero(t, job.ID)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, "lib_1", job.LibraryID)

	got, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	require.NotNil(t, got.DataParsed)
	assert.Equal(t, "lib_1", got.DataParsed.LibraryID)
}

func TestListJobs(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	pending := &Job{Type: JobTypeScan, DataParsed: &ScanJobData{LibraryID: "lib_1"}}
	require.NoError(t, svc.CreateJob(ctx, pending))

	claimed := &Job{
		Type:       JobTypeScan,
		Status:     JobStatusInProgress,
		ProcessID:  pointerutil.String("abc123"),
		DataParsed: &ScanJobData{LibraryID: "lib_2"},
	}
	require.NoError(t, svc.CreateJob(ctx, claimed))

	byStatus, err := svc.ListJobs(ctx, ListJobsOptions{Statuses: []string{JobStatusPending}})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, pending.ID, byStatus[0].ID)

	excluded, err := svc.ListJobs(ctx, ListJobsOptions{ProcessIDToExclude: pointerutil.String("abc123")})
	require.NoError(t, err)
	require.Len(t, excluded, 1)
	assert.Equal(t, pending.ID, excluded[0].ID)

	limited, err := svc.ListJobs(ctx, ListJobsOptions{Limit: pointerutil.Int(1)})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestHasActiveScanForLibrary(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	job := &Job{Type: JobTypeScan, DataParsed: &ScanJobData{LibraryID: "lib_1"}}
	require.NoError(t, svc.CreateJob(ctx, job))

	active, err := svc.HasActiveScanForLibrary(ctx, "lib_1")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = svc.HasActiveScanForLibrary(ctx, "lib_other")
	require.NoError(t, err)
	assert.False(t, active)

	job.Status = JobStatusCompleted
	require.NoError(t, svc.UpdateJob(ctx, job, UpdateJobOptions{Columns: []string{"status"}}))

	active, err = svc.HasActiveScanForLibrary(ctx, "lib_1")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestUpdateJob(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	job := &Job{Type: JobTypeScan, DataParsed: &ScanJobData{LibraryID: "lib_1"}}
	require.NoError(t, svc.CreateJob(ctx, job))

	job.Status = JobStatusFailed
	job.Error = "library not found"
	require.NoError(t, svc.UpdateJob(ctx, job, UpdateJobOptions{Columns: []string{"status", "error"}}))

	got, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, got.Status)
	assert.Equal(t, "library not found", got.Error)

	// No columns means nothing to do.
	require.NoError(t, svc.UpdateJob(ctx, job, UpdateJobOptions{}))
}
