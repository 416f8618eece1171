package response

import (
	"encoding/json"
	"net/http"

	"adventure/constant"

	"github.com/gin-gonic/gin"
)

type JsonMsgResponse struct {
	Ctx *gin.Context
}

type JsonMsgResult struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}
type nilStruct struct{}

const SUCCESS_MSG = "成功"
const ERROR_MSG = "错误"

func NewResponse(c *gin.Context) *JsonMsgResponse {
	return &JsonMsgResponse{Ctx: c}
}

// injectLogID 将 response 注入 logid
func (r *JsonMsgResponse) injectLogID(status int, res JsonMsgResult) {
	logID := ""
	if value, exists := r.Ctx.Get(constant.LOGID); exists {
		if id, ok := value.(string); ok {
			logID = id
		}
	}
	if logID == "" {
		r.Ctx.JSON(status, res)
		return
	}

	resBytes, err := json.Marshal(res)
	if err != nil {
		r.Ctx.JSON(status, res)
		return
	}
	var resMap map[string]interface{}
	if err := json.Unmarshal(resBytes, &resMap); err != nil {
		r.Ctx.JSON(status, res)
		return
	}
	resMap[constant.LOGID] = logID
	r.Ctx.JSON(status, resMap)
}

func (r *JsonMsgResponse) Success(data interface{}) {
	r.injectLogID(http.StatusOK, JsonMsgResult{
		Code:    SUCCESS.Code,
		Message: SUCCESS_MSG,
		Data:    data,
	})
}

func (r *JsonMsgResponse) Error(mc MsgCode) {
	r.ErrorWithStatus(mc, http.StatusOK)
}

// ErrorWithStatus 需要非 200 状态码时使用，例如限流
func (r *JsonMsgResponse) ErrorWithStatus(mc MsgCode, status int) {
	message := mc.Msg
	if message == "" {
		message = ERROR_MSG
	}
	r.injectLogID(status, JsonMsgResult{
		Code:    mc.Code,
		Message: message,
		Data:    nilStruct{},
	})
}
