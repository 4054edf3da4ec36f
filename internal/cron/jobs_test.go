package cron

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"godsendjoseph.dev/r2-gateway/internal/gateway"
	"godsendjoseph.dev/r2-gateway/internal/storage"
	"godsendjoseph.dev/r2-gateway/mocks"
)

type recordingNotifier struct {
	titles []string
}

func (n *recordingNotifier) NotifyWarning(title string, message string, context map[string]string) error {
	n.titles = append(n.titles, title)
	return nil
}

func TestProbeBucket(t *testing.T) {
	logger := zap.NewNop().Sugar()

	t.Run("healthy bucket", func(t *testing.T) {
		bucket := new(mocks.MockBucket)
		bucket.On("List", mock.Anything, storage.ListOptions{Limit: 1}).Return(&storage.ListResult{}, nil).Once()
		notifier := &recordingNotifier{}

		NewJobManager(logger, gateway.New(bucket, gateway.Config{}, logger), notifier).ProbeBucket()()

		assert.Empty(t, notifier.titles)
		bucket.AssertExpectations(t)
	})

	t.Run("unreachable bucket", func(t *testing.T) {
		bucket := new(mocks.MockBucket)
		bucket.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("403 Forbidden")).Once()
		notifier := &recordingNotifier{}

		NewJobManager(logger, gateway.New(bucket, gateway.Config{}, logger), notifier).ProbeBucket()()

		assert.Equal(t, []string{"Bucket probe failed"}, notifier.titles)
	})

	t.Run("unbound bucket", func(t *testing.T) {
		notifier := &recordingNotifier{}

		NewJobManager(logger, gateway.New(nil, gateway.Config{}, logger), notifier).ProbeBucket()()

		assert.Len(t, notifier.titles, 1)
	})
}

func TestScheduler_RunJobByName(t *testing.T) {
	s, err := NewScheduler(zap.NewNop().Sugar(), "Not/AZone")
	require.NoError(t, err)

	ran := 0
	s.Custom("count", "*/5 * * * *", func() { ran++ })
	s.Custom("boom", "*/5 * * * *", func() { panic("recovered") })

	require.NoError(t, s.RunJobByName("count"))
	require.NoError(t, s.RunJobByName("boom"))
	assert.Equal(t, 1, ran)
	assert.Error(t, s.RunJobByName("missing"))
	assert.Len(t, s.GetJobs(), 2)
}
