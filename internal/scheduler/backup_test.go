package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDumpCreator struct{}

func (fakeDumpCreator) Create(_ context.Context, name string) (string, error) {
	return name + ".sql", nil
}

func TestBackupScheduler_DisabledWithoutSchedule(t *testing.T) {
	s := NewBackupScheduler(fakeDumpCreator{}, nil, "")

	err := s.Start(context.Background())

	require.NoError(t, err)
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}

func TestBackupScheduler_InvalidSchedule(t *testing.T) {
	s := NewBackupScheduler(fakeDumpCreator{}, nil, "not a schedule")

	err := s.Start(context.Background())

	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestBackupScheduler_StartStop(t *testing.T) {
	s := NewBackupScheduler(fakeDumpCreator{}, nil, "0 3 * * *")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.NextRunTime())

	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestAuditCleanupScheduler_DisabledWithoutQueue(t *testing.T) {
	s := NewAuditCleanupScheduler(nil, 30)

	require.NoError(t, s.Start())

	// Stop on a never-started scheduler is a no-op
	s.Stop()
}
