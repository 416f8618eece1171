package loop

import (
	"context"
	"os"
	"sync"

	"adventure/biz/entity"
	"adventure/constant"
	"adventure/infra/configs"
	"adventure/pkg/log/zlog"

	cozeloop "github.com/coze-dev/cozeloop-go"
	"github.com/coze-dev/cozeloop-go/spec/tracespec"
)

var (
	client    cozeloop.Client
	isEnabled bool
	initOnce  sync.Once
)

// InitCozeLoop 初始化 CozeLoop 客户端（全局单例）
func InitCozeLoop() {
	initOnce.Do(func() {
		config := configs.Config().GetCozeLoopConfig()

		if !config.Enable {
			zlog.Infof("CozeLoop 未启用，跳过初始化")
			isEnabled = false
			return
		}

		os.Setenv("COZELOOP_WORKSPACE_ID", config.WorkspaceID)
		os.Setenv("COZELOOP_API_TOKEN", config.APIToken)

		_client, err := cozeloop.NewClient(cozeloop.WithPromptTrace(config.PromptTrace))
		if err != nil {
			zlog.Errorf("CozeLoop 客户端初始化失败: %v", err)
			isEnabled = false
			return
		}

		client = _client
		isEnabled = true
		zlog.Infof("CozeLoop 客户端初始化成功, prompt trace: %v", config.PromptTrace)
	})
}

// IsEnabled 检查 CozeLoop 是否已启用
func IsEnabled() bool {
	return isEnabled
}

// tagSpan 给 span 打上会话和 log id
func tagSpan(ctx context.Context, span cozeloop.Span) {
	if span == nil {
		return
	}
	if sessionID, ok := entity.GetSessionID(ctx); ok {
		span.SetUserIDBaggage(ctx, sessionID)
	}
	if logid, ok := zlog.GetLogId(ctx); ok {
		span.SetTags(ctx, map[string]interface{}{
			constant.LOGID: logid,
		})
	}
}

// StartRootSpan 创建 Root Span（HTTP 请求级别）
func StartRootSpan(ctx context.Context, spanName string) (context.Context, cozeloop.Span) {
	if !isEnabled || client == nil {
		return ctx, nil
	}
	ctx, span := cozeloop.StartSpan(ctx, spanName, constant.LoopSpanType_Root.String())
	tagSpan(ctx, span)
	return ctx, span
}

// StartCustomSpan 创建自定义 Span（业务逻辑）
func StartCustomSpan(ctx context.Context, spanName string, spanType string) (context.Context, cozeloop.Span) {
	if !isEnabled || client == nil {
		return ctx, nil
	}
	ctx, span := cozeloop.StartSpan(ctx, spanName, spanType)
	tagSpan(ctx, span)
	return ctx, span
}

// StartModelSpan 创建 Model Span（模型调用）
func StartModelSpan(ctx context.Context, spanName string, modelProvider string, modelName string) (context.Context, cozeloop.Span) {
	if !isEnabled || client == nil {
		return ctx, nil
	}
	ctx, span := client.StartSpan(ctx, spanName, tracespec.VModelSpanType)
	if span != nil {
		span.SetModelProvider(ctx, modelProvider)
		span.SetModelName(ctx, modelName)
		tagSpan(ctx, span)
	}
	return ctx, span
}

// SetSpanAllInOne 一次性设置 Span 的输入、输出和状态
func SetSpanAllInOne(ctx context.Context, sp cozeloop.Span, input, output any, err error) {
	if sp == nil {
		return
	}
	sp.SetInput(ctx, input)
	sp.SetOutput(ctx, output)
	if err != nil {
		sp.SetError(ctx, err)
		sp.SetStatusCode(ctx, 1)
	} else {
		sp.SetStatusCode(ctx, 0)
	}
	sp.Finish(ctx)
}

// SetModelSpanData 按标准格式上报模型输入输出和 token
func SetModelSpanData(ctx context.Context, sp cozeloop.Span,
	messages []*tracespec.ModelMessage,
	response string,
	inputTokens, outputTokens int64,
	err error) {
	if sp == nil {
		return
	}

	sp.SetInput(ctx, tracespec.ModelInput{
		Messages: messages,
	})

	if response != "" {
		sp.SetOutput(ctx, tracespec.ModelOutput{
			Choices: []*tracespec.ModelChoice{
				{
					Message: &tracespec.ModelMessage{
						Role:    tracespec.VRoleAssistant,
						Content: response,
					},
				},
			},
		})
	}

	if inputTokens > 0 {
		sp.SetInputTokens(ctx, int(inputTokens))
	}
	if outputTokens > 0 {
		sp.SetOutputTokens(ctx, int(outputTokens))
	}

	if err != nil {
		sp.SetError(ctx, err)
		sp.SetStatusCode(ctx, 1)
	} else {
		sp.SetStatusCode(ctx, 0)
	}

	sp.Finish(ctx)
}

func GetNewSpan(ctx context.Context, spanName string, spanType constant.LoopSpanType) (context.Context, cozeloop.Span) {
	if spanType == constant.LoopSpanType_Root {
		return StartRootSpan(ctx, spanName)
	}
	return StartCustomSpan(ctx, spanName, spanType.String())
}

// Close 关闭 CozeLoop 客户端
func Close(ctx context.Context) {
	if client != nil {
		client.Close(ctx)
		zlog.Infof("CozeLoop 客户端已关闭")
	}
}
