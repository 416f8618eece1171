package eino

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adventure/biz/repo"
	"adventure/infra/configs"
	"adventure/pkg/log/zlog"
	"adventure/pkg/loop"
	"adventure/pkg/metrics"

	"github.com/cloudwego/eino-ext/components/model/ark"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/coze-dev/cozeloop-go/spec/tracespec"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
)

const (
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
)

// NewCompletionModel 按配置创建补全模型，外面统一包一层链路追踪和指标
func NewCompletionModel(ctx context.Context, conf configs.StoryConfig) (repo.CompletionModel, error) {
	if conf.ApiKey == "" {
		return nil, fmt.Errorf("未配置模型 api key")
	}

	var (
		inner    repo.CompletionModel
		provider string
		err      error
	)
	switch strings.ToLower(conf.Provider) {
	case ProviderArk:
		inner, err = newArkModel(ctx, conf)
		provider = "doubao"
	case ProviderOpenAI, "":
		inner = NewOpenAIModel(conf)
		provider = "openai"
	default:
		return nil, fmt.Errorf("不支持的模型提供方: %s", conf.Provider)
	}
	if err != nil {
		return nil, err
	}

	zlog.Infof("故事生成模型初始化成功, provider=%s, model=%s", provider, conf.ModelName)
	return NewTracedModel(inner, provider, conf.ModelName), nil
}

func newArkModel(ctx context.Context, conf configs.StoryConfig) (repo.CompletionModel, error) {
	schemaMap, err := storyTreeSchema()
	if err != nil {
		return nil, err
	}
	temperature := conf.Temperature
	arkConf := &ark.ChatModelConfig{
		APIKey:      conf.ApiKey,
		Model:       conf.ModelName,
		Temperature: &temperature,
		// 结构化输出不需要思考过程
		Thinking: &model.Thinking{Type: model.ThinkingTypeDisabled},
		ResponseFormat: &ark.ResponseFormat{Type: model.ResponseFormatJSONSchema, JSONSchema: &model.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:        "story_generator",
			Description: "互动冒险故事树，只输出json",
			Schema:      schemaMap,
			Strict:      true,
		}},
	}
	if conf.BaseURL != "" && !strings.Contains(conf.BaseURL, "openrouter") {
		arkConf.BaseURL = conf.BaseURL
	}
	chatModel, err := ark.NewChatModel(ctx, arkConf)
	if chatModel == nil || err != nil {
		return nil, fmt.Errorf("ark 模型连接失败: %v", err)
	}
	return chatModel, nil
}

// TracedModel 给每次模型调用上报 cozeloop model span 和 prometheus 指标
type TracedModel struct {
	inner     repo.CompletionModel
	provider  string
	modelName string
}

func NewTracedModel(inner repo.CompletionModel, provider, modelName string) *TracedModel {
	return &TracedModel{inner: inner, provider: provider, modelName: modelName}
}

func (m *TracedModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (result *schema.Message, err error) {
	ctx, modelSpan := loop.StartModelSpan(ctx, "story.generate", m.provider, m.modelName)
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RecordModelCall(m.modelName, status, time.Since(start))

		var responseContent string
		var inputTokens, outputTokens int64
		if result != nil {
			responseContent = result.Content
			if result.ResponseMeta != nil && result.ResponseMeta.Usage != nil {
				inputTokens = int64(result.ResponseMeta.Usage.PromptTokens)
				outputTokens = int64(result.ResponseMeta.Usage.CompletionTokens)
			}
		}
		metrics.RecordTokens(m.modelName, int(inputTokens), int(outputTokens))
		loop.SetModelSpanData(ctx, modelSpan, toTraceMessages(input), responseContent, inputTokens, outputTokens, err)
	}()

	return m.inner.Generate(ctx, input, opts...)
}

func toTraceMessages(messages []*schema.Message) []*tracespec.ModelMessage {
	traceMessages := make([]*tracespec.ModelMessage, 0, len(messages))
	for _, msg := range messages {
		var role string
		switch msg.Role {
		case schema.System:
			role = tracespec.VRoleSystem
		case schema.Assistant:
			role = tracespec.VRoleAssistant
		default:
			role = tracespec.VRoleUser
		}
		traceMessages = append(traceMessages, &tracespec.ModelMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return traceMessages
}
