package queue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"adventure/biz/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryQueueProcessesTasks(t *testing.T) {
	var wg sync.WaitGroup
	var processed atomic.Int32
	q, err := NewStoryQueue(2, 10, func(task *entity.StoryTask) {
		processed.Add(1)
		wg.Done()
	})
	require.NoError(t, err)
	defer q.Stop(time.Second)

	wg.Add(5)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.EnqueueTask(&entity.StoryTask{JobID: "j"}))
	}
	wg.Wait()
	assert.Equal(t, int32(5), processed.Load())
}

func TestStoryQueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	q, err := NewStoryQueue(1, 1, func(task *entity.StoryTask) {
		started <- struct{}{}
		<-release
	})
	require.NoError(t, err)
	defer func() {
		close(release)
		q.Stop(time.Second)
	}()

	// 第一个任务占住唯一的 worker
	require.NoError(t, q.EnqueueTask(&entity.StoryTask{JobID: "1"}))
	<-started

	// 第二个被消费者取出后阻塞在 Submit，第三个留在 channel，第四个入队失败
	require.NoError(t, q.EnqueueTask(&entity.StoryTask{JobID: "2"}))
	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.EnqueueTask(&entity.StoryTask{JobID: "3"}))
	assert.ErrorIs(t, q.EnqueueTask(&entity.StoryTask{JobID: "4"}), QUEUE_FULL)
}

func TestStoryQueueStopped(t *testing.T) {
	q, err := NewStoryQueue(1, 1, func(task *entity.StoryTask) {})
	require.NoError(t, err)
	q.Stop(time.Second)
	q.Stop(time.Second)
	assert.ErrorIs(t, q.EnqueueTask(&entity.StoryTask{JobID: "x"}), QUEUE_STOPPED)

	var nilQueue *StoryQueue
	assert.ErrorIs(t, nilQueue.EnqueueTask(&entity.StoryTask{}), QUEUE_NOT_INIT)
}

func TestStoryQueueRecoversPanic(t *testing.T) {
	done := make(chan struct{})
	calls := 0
	q, err := NewStoryQueue(1, 2, func(task *entity.StoryTask) {
		calls++
		if task.JobID == "boom" {
			panic("boom")
		}
		close(done)
	})
	require.NoError(t, err)
	defer q.Stop(time.Second)

	require.NoError(t, q.EnqueueTask(&entity.StoryTask{JobID: "boom"}))
	require.NoError(t, q.EnqueueTask(&entity.StoryTask{JobID: "ok"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second task not processed")
	}
	assert.Equal(t, 2, calls)
}
