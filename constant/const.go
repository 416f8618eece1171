package constant

// 所有常量文件读取位置
const (
	DEFAULT_CONFIG_FILE_PATH = "conf/config.yaml"
	// CONFIG_PATH_ENV 覆盖配置文件路径的环境变量
	CONFIG_PATH_ENV = "ADVENTURE_CONFIG"
	// ENV_PREFIX 配置项的环境变量前缀，如 ADVENTURE_STORY_API_KEY
	ENV_PREFIX = "ADVENTURE"
)

// 日志字段
const (
	LOGID = "log_id"
)

// 会话相关
const (
	SESSION_NAME       = "adventure_session"
	SESSION_ID_KEY     = "session_id"
	CTX_SESSION_ID_KEY = "session_id"
)

// Redis Key 常量
const (
	// REDIS_RATE_LIMIT_GLOBAL_KEY 全局限流 key
	REDIS_RATE_LIMIT_GLOBAL_KEY = "rate_limit:global"
	// REDIS_RATE_LIMIT_SESSION_KEY 按会话限流 key
	REDIS_RATE_LIMIT_SESSION_KEY = "rate_limit:session:%s"
)

// LoopSpanType 链路追踪 span 类型
type LoopSpanType string

const (
	LoopSpanType_Root     LoopSpanType = "root"
	LoopSpanType_Handle   LoopSpanType = "handle"
	LoopSpanType_Function LoopSpanType = "function"
	LoopSpanType_StepCall LoopSpanType = "step_call"
)

func (t LoopSpanType) String() string {
	return string(t)
}
