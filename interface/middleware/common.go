package middleware

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"adventure/constant"
	"adventure/pkg/log/zlog"
	"adventure/pkg/loop"
	"adventure/pkg/trace"

	cozeloop "github.com/coze-dev/cozeloop-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// responseBodyWriter 用于捕获响应体
type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r responseBodyWriter) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// AddTracer
//
//	@Description: 注入 log_id，开启 CozeLoop root span 并记录请求/响应
//	@return gin.HandlerFunc
func AddTracer() gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		logID := trace.ResolveTraceID(gCtx.GetHeader(trace.RequestIDHeader))
		gCtx.Request.Header.Set(trace.RequestIDHeader, logID)
		gCtx.Header(trace.RequestIDHeader, logID)
		// response 注入 log_id 用
		gCtx.Set(constant.LOGID, logID)

		ctx := trace.WithTrace(gCtx.Request.Context(), logID, time.Now())
		ctx = zlog.WithLogKey(ctx, zap.String(constant.LOGID, logID))

		var span cozeloop.Span
		var responseBuffer *bytes.Buffer
		if loop.IsEnabled() {
			spanName := gCtx.Request.Method + " " + gCtx.FullPath()
			if gCtx.FullPath() == "" {
				spanName = gCtx.Request.Method + " " + gCtx.Request.URL.Path
			}
			ctx, span = loop.StartRootSpan(ctx, spanName)
		}
		if span != nil {
			var requestBody string
			if gCtx.Request.Body != nil {
				bodyBytes, err := io.ReadAll(gCtx.Request.Body)
				if err == nil {
					requestBody = string(bodyBytes)
					gCtx.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
				}
			}
			span.SetInput(ctx, requestBody)
			span.SetTags(ctx, map[string]interface{}{
				"http.method":      gCtx.Request.Method,
				"http.path":        gCtx.Request.URL.Path,
				"http.query":       gCtx.Request.URL.RawQuery,
				"http.user_agent":  gCtx.Request.UserAgent(),
				"http.remote_addr": gCtx.ClientIP(),
				"request_id":       logID,
			})

			responseBuffer = &bytes.Buffer{}
			gCtx.Writer = &responseBodyWriter{ResponseWriter: gCtx.Writer, body: responseBuffer}
		}

		gCtx.Request = gCtx.Request.WithContext(ctx)
		gCtx.Next()

		statusCode := gCtx.Writer.Status()
		zlog.CtxInfof(ctx, "%s %s status=%d cost=%s", gCtx.Request.Method, gCtx.Request.URL.Path, statusCode, trace.Elapsed(ctx))

		if span == nil {
			return
		}
		span.SetOutput(ctx, responseBuffer.String())
		span.SetTags(ctx, map[string]interface{}{
			"http.status_code":   statusCode,
			"http.response_size": gCtx.Writer.Size(),
		})
		if statusCode >= 400 {
			span.SetError(ctx, fmt.Errorf("HTTP %d", statusCode))
			span.SetStatusCode(ctx, 1)
		} else {
			span.SetStatusCode(ctx, 0)
		}
		span.Finish(ctx)
	}
}
