package response

type MsgCode struct {
	Code int
	Msg  string
}

var (
	SUCCESS            = MsgCode{Code: 200, Msg: "成功"}
	COMMON_FAIL        = MsgCode{Code: -4300, Msg: "失败"}
	PARAM_NOT_COMPLETE = MsgCode{Code: 40001, Msg: "参数不完整"}
	PARAM_NOT_VALID    = MsgCode{Code: 40002, Msg: "参数不合法"}
	TOO_MANY_REQUESTS  = MsgCode{Code: 42900, Msg: "请求过于频繁，请稍后再试"}

	// 会话
	SESSION_ID_NOT_NULL = MsgCode{Code: 41001, Msg: "会话ID不能为空"}

	// 故事
	STORY_ID_NOT_NULL       = MsgCode{Code: 42001, Msg: "故事ID不能为空"}
	STORY_NOT_EXIST         = MsgCode{Code: 42002, Msg: "该故事不存在"}
	STORY_GRAPH_BROKEN      = MsgCode{Code: 42003, Msg: "故事数据已损坏"}
	STORY_GENERATION_FAILED = MsgCode{Code: 42004, Msg: "故事生成失败"}
	STORY_PERSIST_FAILED    = MsgCode{Code: 42005, Msg: "故事保存失败"}

	// 任务
	JOB_ID_NOT_NULL   = MsgCode{Code: 43001, Msg: "任务ID不能为空"}
	JOB_NOT_EXIST     = MsgCode{Code: 43002, Msg: "该任务不存在"}
	QUEUE_UNAVAILABLE = MsgCode{Code: 43003, Msg: "生成队列繁忙，请稍后再试"}
)
