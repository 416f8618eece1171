package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adventure/biz/jobservice"
	"adventure/biz/storyservice"
	"adventure/infra/cache"
	"adventure/infra/configs"
	"adventure/infra/database"
	"adventure/infra/eino"
	"adventure/infra/storage"
	"adventure/initalize"
	"adventure/interface/handler"
	"adventure/interface/router"
	"adventure/pkg/log/zlog"
	"adventure/pkg/loop"
	"adventure/pkg/queue"
	"adventure/util"
)

func main() {
	configs.MustInit(configs.ResolvePath())
	conf := configs.Config()

	initalize.InitLogger(conf.GetLogConfig())
	if err := util.InitSnowflake(1); err != nil {
		zlog.Fatalf("初始化ID生成器失败: %v", err)
	}
	loop.InitCozeLoop()

	database.InitDB()
	db := database.AdventureDB()
	if err := storage.AutoMigrate(db); err != nil {
		zlog.Fatalf("数据库迁移失败: %v", err)
	}
	if err := cache.InitRedis(); err != nil {
		// 只影响限流
		zlog.Errorf("%v", err)
	}

	ctx := context.Background()
	storyConf := conf.GetStoryConfig()
	llm, err := eino.NewCompletionModel(ctx, storyConf)
	if err != nil {
		zlog.Fatalf("初始化故事生成模型失败: %v", err)
	}

	storySvc := storyservice.NewStoryService(storage.NewStoryPersistence(db), llm, storyservice.StoryGenerationConfig{
		MaxRetries:     storyConf.MaxRetries,
		RetryBaseDelay: storyConf.RetryBaseDelay,
		DefaultTheme:   storyConf.DefaultTheme,
	})

	jobConf := conf.GetJobConfig()
	jobSvc := jobservice.NewJobService(storage.NewJobPersistence(db), storySvc, jobConf.Timeout)
	if _, err := jobSvc.RecoverStaleJobs(ctx); err != nil {
		zlog.Errorf("恢复遗留任务失败: %v", err)
	}

	storyQueue, err := queue.NewStoryQueue(jobConf.PoolSize, jobConf.QueueCapacity, jobSvc.ProcessTask)
	if err != nil {
		zlog.Fatalf("初始化故事生成队列失败: %v", err)
	}
	jobSvc.BindQueue(storyQueue)

	handler.InitHandler(storySvc, jobSvc)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.GetServerConfig().Port),
		Handler: router.NewRouter(conf),
	}

	go func() {
		zlog.Infof("服务启动，监听端口 %d", conf.GetServerConfig().Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Warnf("收到退出信号，开始关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Errorf("HTTP 服务关闭失败: %v", err)
	}
	initalize.Eve(storyQueue)
}
