package configs

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"adventure/constant"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	Mode         string   `mapstructure:"mode"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	// Driver mysql 或 sqlite
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SqlitePath   string `mapstructure:"sqlite_path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	LogLevel     string `mapstructure:"log_level"`
}

// MysqlDSN 拼接 mysql 连接串
func (d DatabaseConfig) MysqlDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Enable        bool `mapstructure:"enable"`
	Limit         int  `mapstructure:"limit"`
	WindowSeconds int  `mapstructure:"window_seconds"`
}

type StoryConfig struct {
	// Provider ark 或 openai（兼容 OpenRouter）
	Provider       string        `mapstructure:"provider"`
	ApiKey         string        `mapstructure:"api_key"`
	ModelName      string        `mapstructure:"model_name"`
	BaseURL        string        `mapstructure:"base_url"`
	Temperature    float32       `mapstructure:"temperature"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	DefaultTheme   string        `mapstructure:"default_theme"`
}

type JobConfig struct {
	PoolSize      int           `mapstructure:"pool_size"`
	QueueCapacity int           `mapstructure:"queue_capacity"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
	MaxAge int    `mapstructure:"max_age"`
	Secure bool   `mapstructure:"secure"`
}

type CozeLoopConfig struct {
	Enable      bool   `mapstructure:"enable"`
	WorkspaceID string `mapstructure:"workspace_id"`
	APIToken    string `mapstructure:"api_token"`
	PromptTrace bool   `mapstructure:"prompt_trace"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Story     StoryConfig     `mapstructure:"story"`
	Job       JobConfig       `mapstructure:"job"`
	Session   SessionConfig   `mapstructure:"session"`
	CozeLoop  CozeLoopConfig  `mapstructure:"cozeloop"`
	Log       LogConfig       `mapstructure:"log"`
}

type IConfig interface {
	GetServerConfig() ServerConfig
	GetDatabaseConfig() DatabaseConfig
	GetRedisConfig() RedisConfig
	GetRateLimitConfig() RateLimitConfig
	GetStoryConfig() StoryConfig
	GetJobConfig() JobConfig
	GetSessionConfig() SessionConfig
	GetCozeLoopConfig() CozeLoopConfig
	GetLogConfig() LogConfig
}

var (
	conf *AppConfig
	mu   sync.RWMutex
)

// MustInit 加载配置，失败直接 panic
func MustInit(path string) {
	c, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}
	mu.Lock()
	conf = c
	mu.Unlock()
}

// Config 获取全局配置，未初始化时返回默认值
func Config() IConfig {
	mu.RLock()
	defer mu.RUnlock()
	if conf == nil {
		c, _ := Load("")
		return c
	}
	return conf
}

// ResolvePath 环境变量优先，其次默认路径
func ResolvePath() string {
	if p := os.Getenv(constant.CONFIG_PATH_ENV); p != "" {
		return p
	}
	return constant.DEFAULT_CONFIG_FILE_PATH
}

// Load 从 yaml 文件加载配置，path 为空时只使用默认值和环境变量
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(constant.ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
		}
	}

	var c AppConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allow_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "data/adventure.db")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "adventure")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.enable", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.enable", false)
	v.SetDefault("rate_limit.limit", 10)
	v.SetDefault("rate_limit.window_seconds", 60)

	v.SetDefault("story.provider", "openai")
	v.SetDefault("story.api_key", "")
	v.SetDefault("story.model_name", "kwaipilot/kat-coder-pro:free")
	v.SetDefault("story.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("story.temperature", 0.4)
	v.SetDefault("story.max_retries", 3)
	v.SetDefault("story.retry_base_delay", "500ms")
	v.SetDefault("story.default_theme", "fantasy")

	v.SetDefault("job.pool_size", 3)
	v.SetDefault("job.queue_capacity", 50)
	v.SetDefault("job.timeout", "5m")

	v.SetDefault("session.secret", "change-me")
	v.SetDefault("session.max_age", 86400*30)
	v.SetDefault("session.secure", false)

	v.SetDefault("cozeloop.enable", false)
	v.SetDefault("cozeloop.workspace_id", "")
	v.SetDefault("cozeloop.api_token", "")
	v.SetDefault("cozeloop.prompt_trace", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/adventure.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)
}

func (c *AppConfig) GetServerConfig() ServerConfig       { return c.Server }
func (c *AppConfig) GetDatabaseConfig() DatabaseConfig   { return c.Database }
func (c *AppConfig) GetRedisConfig() RedisConfig         { return c.Redis }
func (c *AppConfig) GetRateLimitConfig() RateLimitConfig { return c.RateLimit }
func (c *AppConfig) GetStoryConfig() StoryConfig         { return c.Story }
func (c *AppConfig) GetJobConfig() JobConfig             { return c.Job }
func (c *AppConfig) GetSessionConfig() SessionConfig     { return c.Session }
func (c *AppConfig) GetCozeLoopConfig() CozeLoopConfig   { return c.CozeLoop }
func (c *AppConfig) GetLogConfig() LogConfig             { return c.Log }
