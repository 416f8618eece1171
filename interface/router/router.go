package router

import (
	"adventure/infra/configs"
	"adventure/interface/middleware"
	"adventure/pkg/metrics"
	"adventure/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter 注册中间件和路由，调用前需要 handler.InitHandler
func NewRouter(conf configs.IConfig) *gin.Engine {
	serverConf := conf.GetServerConfig()
	if serverConf.Mode != "" {
		gin.SetMode(serverConf.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AddTracer())

	corsConf := cors.DefaultConfig()
	corsConf.AllowOrigins = serverConf.AllowOrigins
	if len(corsConf.AllowOrigins) == 0 {
		corsConf.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConf.AllowCredentials = true
	corsConf.AddExposeHeaders("X-Request-ID")
	r.Use(cors.New(corsConf))

	r.GET("/ping", func(gCtx *gin.Context) {
		response.NewResponse(gCtx).Success("pong")
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.Use(middleware.Session(conf.GetSessionConfig()))
	api.Use(middleware.RateLimiter(conf.GetRateLimitConfig()))
	{
		api.POST("/stories/create", CreateStory())
		api.GET("/stories/:story_id/complete", GetCompleteStory())
		api.GET("/jobs/:job_id", GetJob())
	}

	return r
}
