package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmsportal/internal/models/response_models"
)

type stubReconcile struct {
	calls   int
	reports []response_models.SyncReport
	err     error
}

func (s *stubReconcile) SyncClient(context.Context, string, string) (*response_models.SyncReport, error) {
	return nil, errors.New("not used")
}

func (s *stubReconcile) SyncAll(ctx context.Context) ([]response_models.SyncReport, error) {
	s.calls++
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("sweep must run under a deadline")
	}
	return s.reports, s.err
}

func TestSweepJob_Run(t *testing.T) {
	stub := &stubReconcile{reports: []response_models.SyncReport{{NuvamaCode: "C100", Updated: 2}, {NuvamaCode: "C200", Failed: 1}}}
	job := NewSweepJob(stub, 0, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "reconcile_sweep", job.Name())

	stub.err = errors.New("db down")
	assert.EqualError(t, job.Run(), "db down")
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())
	stub := &stubReconcile{}
	job := NewSweepJob(stub, 0, zerolog.Nop())

	require.NoError(t, s.AddJob("@every 1h", job))
	assert.Error(t, s.AddJob("not a schedule", job))

	assert.Len(t, s.cron.Entries(), 1)

	s.Start()
	s.Stop()
	assert.Equal(t, 0, stub.calls)
}
