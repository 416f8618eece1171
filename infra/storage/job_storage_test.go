package storage

import (
	"context"
	"testing"

	"adventure/biz/entity"
	"adventure/biz/jobservice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(t *testing.T, j *jobPersistence, sessionID string) *entity.StoryJob {
	t.Helper()
	job, err := entity.NewStoryJob(sessionID, "pirates")
	require.NoError(t, err)
	require.NoError(t, j.CreateJob(context.Background(), job))
	return job
}

func TestJobLifecycle(t *testing.T) {
	j := NewJobPersistence(newTestDB(t))
	ctx := context.Background()
	job := newJob(t, j, "sess")

	got, err := j.GetJob(ctx, job.JobID, "sess")
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusPending, got.Status)
	assert.Nil(t, got.StoryID)
	assert.Nil(t, got.CompletedAt)

	require.NoError(t, j.MarkProcessing(ctx, job.JobID))
	require.NoError(t, j.MarkCompleted(ctx, job.JobID, 7))

	got, err = j.GetJob(ctx, job.JobID, "sess")
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, got.Status)
	require.NotNil(t, got.StoryID)
	assert.Equal(t, uint64(7), *got.StoryID)
	assert.NotNil(t, got.CompletedAt)

	// 终态不能再改
	assert.ErrorIs(t, j.MarkFailed(ctx, job.JobID, "late"), jobservice.JOB_STATUS_CONFLICT)
	assert.ErrorIs(t, j.MarkProcessing(ctx, job.JobID), jobservice.JOB_STATUS_CONFLICT)
}

func TestJobFailedKeepsReason(t *testing.T) {
	j := NewJobPersistence(newTestDB(t))
	ctx := context.Background()
	job := newJob(t, j, "sess")

	require.NoError(t, j.MarkFailed(ctx, job.JobID, "model down"))
	got, err := j.GetJob(ctx, job.JobID, "sess")
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "model down", *got.Error)
}

func TestJobScopedBySession(t *testing.T) {
	j := NewJobPersistence(newTestDB(t))
	job := newJob(t, j, "owner")

	_, err := j.GetJob(context.Background(), job.JobID, "intruder")
	assert.ErrorIs(t, err, jobservice.JOB_NOT_EXIST)
	_, err = j.GetJob(context.Background(), "missing", "owner")
	assert.ErrorIs(t, err, jobservice.JOB_NOT_EXIST)
}

func TestFailUnfinishedJobs(t *testing.T) {
	j := NewJobPersistence(newTestDB(t))
	ctx := context.Background()
	pending := newJob(t, j, "sess")
	processing := newJob(t, j, "sess")
	done := newJob(t, j, "sess")
	require.NoError(t, j.MarkProcessing(ctx, processing.JobID))
	require.NoError(t, j.MarkCompleted(ctx, done.JobID, 1))

	n, err := j.FailUnfinishedJobs(ctx, "restart")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, id := range []string{pending.JobID, processing.JobID} {
		got, err := j.GetJob(ctx, id, "sess")
		require.NoError(t, err)
		assert.Equal(t, entity.JobStatusFailed, got.Status)
	}
	got, err := j.GetJob(ctx, done.JobID, "sess")
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, got.Status)
}
