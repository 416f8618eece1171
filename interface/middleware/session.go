package middleware

import (
	"net/http"

	"adventure/biz/entity"
	"adventure/constant"
	"adventure/infra/configs"
	"adventure/pkg/log/zlog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session 匿名会话：cookie 里没有会话 ID 时签发一个新的
func Session(conf configs.SessionConfig) gin.HandlerFunc {
	secret := conf.Secret
	if secret == "" {
		// 重启后旧 cookie 全部失效
		zlog.Warnf("未配置 session secret，使用随机密钥")
		secret = uuid.NewString() + uuid.NewString()
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   conf.MaxAge,
		HttpOnly: true,
		Secure:   conf.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return func(gCtx *gin.Context) {
		ctx := gCtx.Request.Context()

		// 签名校验失败时 Get 仍会返回一个新会话
		sess, err := store.Get(gCtx.Request, constant.SESSION_NAME)
		if err != nil {
			zlog.CtxWarnf(ctx, "会话 cookie 无效，重新签发: %v", err)
		}

		sessionID, _ := sess.Values[constant.SESSION_ID_KEY].(string)
		if sessionID == "" {
			sessionID = uuid.NewString()
			sess.Values[constant.SESSION_ID_KEY] = sessionID
			if err := sess.Save(gCtx.Request, gCtx.Writer); err != nil {
				zlog.CtxErrorf(ctx, "会话保存失败: %v", err)
			}
		}

		gCtx.Set(constant.CTX_SESSION_ID_KEY, sessionID)
		ctx = entity.WithSessionID(ctx, sessionID)
		ctx = zlog.WithLogKey(ctx, zap.String(constant.SESSION_ID_KEY, sessionID))
		gCtx.Request = gCtx.Request.WithContext(ctx)

		gCtx.Next()
	}
}

// GetSessionID 读取 Session 中间件写入的会话 ID
func GetSessionID(gCtx *gin.Context) string {
	return gCtx.GetString(constant.CTX_SESSION_ID_KEY)
}
