package queue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"adventure/biz/entity"
	"adventure/pkg/log/zlog"

	"github.com/panjf2000/ants/v2"
)

var (
	QUEUE_NOT_INIT = errors.New("故事生成队列未初始化")
	QUEUE_FULL     = errors.New("故事生成队列已满，任务提交失败")
	QUEUE_STOPPED  = errors.New("故事生成队列已停止")
)

// Processor 处理一个生成任务
type Processor func(task *entity.StoryTask)

// StoryQueue 有界任务队列 + ants 协程池
type StoryQueue struct {
	taskChan   chan *entity.StoryTask
	workerPool *ants.Pool
	stopChan   chan struct{}
	done       chan struct{}
	processor  Processor
	stopOnce   sync.Once
	mu         sync.RWMutex
	stopped    bool
}

// NewStoryQueue 创建并启动队列
func NewStoryQueue(poolSize, queueCapacity int, processor Processor) (*StoryQueue, error) {
	if poolSize <= 0 {
		poolSize = 3
	}
	if queueCapacity <= 0 {
		queueCapacity = 50
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("创建协程池失败: %w", err)
	}

	q := &StoryQueue{
		taskChan:   make(chan *entity.StoryTask, queueCapacity),
		workerPool: pool,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
		processor:  processor,
	}
	go q.start()

	zlog.Infof("故事生成队列初始化成功，协程池大小: %d, 队列容量: %d", poolSize, queueCapacity)
	return q, nil
}

// start 启动队列消费者
func (q *StoryQueue) start() {
	defer close(q.done)
	for {
		select {
		case <-q.stopChan:
			zlog.Infof("故事生成队列停止")
			return
		case task := <-q.taskChan:
			// 池满时 Submit 阻塞，排队的任务留在 channel 里
			err := q.workerPool.Submit(func() {
				q.run(task)
			})
			if err != nil {
				zlog.Errorf("提交故事任务到协程池失败: %v, jobID=%s", err, task.JobID)
			}
		}
	}
}

func (q *StoryQueue) run(task *entity.StoryTask) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Errorf("故事任务 panic: %v, jobID=%s", r, task.JobID)
		}
	}()
	q.processor(task)
}

// EnqueueTask 非阻塞入队，队列满直接返回错误
func (q *StoryQueue) EnqueueTask(task *entity.StoryTask) error {
	if q == nil {
		return QUEUE_NOT_INIT
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return QUEUE_STOPPED
	}

	select {
	case q.taskChan <- task:
		zlog.Infof("故事任务已加入队列: jobID=%s", task.JobID)
		return nil
	default:
		return QUEUE_FULL
	}
}

// Len 当前排队中的任务数
func (q *StoryQueue) Len() int {
	return len(q.taskChan)
}

// Stop 停止消费并等待进行中的任务结束，排队中未执行的任务丢弃
func (q *StoryQueue) Stop(timeout time.Duration) {
	if q == nil {
		return
	}
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.stopped = true
		q.mu.Unlock()

		close(q.stopChan)
		<-q.done
		if err := q.workerPool.ReleaseTimeout(timeout); err != nil {
			zlog.Warnf("等待故事任务结束超时: %v", err)
		}
		zlog.Infof("故事生成队列和协程池已关闭，丢弃排队任务%d个", len(q.taskChan))
	})
}
