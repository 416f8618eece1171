package initalize

import (
	"context"
	"time"

	"adventure/infra/cache"
	"adventure/infra/database"
	"adventure/pkg/log/zlog"
	"adventure/pkg/loop"
	"adventure/pkg/queue"
)

const queueDrainTimeout = 30 * time.Second

// Eve 退出前释放资源，先停队列再关存储
func Eve(q *queue.StoryQueue) {
	zlog.Warnf("开始释放资源！")

	if q != nil {
		q.Stop(queueDrainTimeout)
	}

	errRedis := cache.Close()
	if errRedis != nil {
		zlog.Errorf("Redis关闭失败 ：%v", errRedis)
	}

	errDB := database.Close()
	if errDB != nil {
		zlog.Errorf("数据库关闭失败 ：%v", errDB)
	}

	loop.Close(context.Background())

	if errDB == nil && errRedis == nil {
		zlog.Warnf("资源释放成功！")
	}
	zlog.Sync()
}
