package eino

import (
	"context"
	"errors"
	"fmt"

	"adventure/infra/configs"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
)

var ErrNoChoices = errors.New("模型没有返回任何结果")

// OpenAIModel OpenAI 兼容接口（OpenRouter 等）的补全模型
type OpenAIModel struct {
	client      *openai.Client
	modelName   string
	temperature float32
}

func NewOpenAIModel(conf configs.StoryConfig) *OpenAIModel {
	clientConf := openai.DefaultConfig(conf.ApiKey)
	if conf.BaseURL != "" {
		clientConf.BaseURL = conf.BaseURL
	}
	return &OpenAIModel{
		client:      openai.NewClientWithConfig(clientConf),
		modelName:   conf.ModelName,
		temperature: conf.Temperature,
	}
}

func (m *OpenAIModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	options := einomodel.GetCommonOptions(&einomodel.Options{
		Model:       &m.modelName,
		Temperature: &m.temperature,
	}, opts...)

	req := openai.ChatCompletionRequest{
		Messages: make([]openai.ChatCompletionMessage, 0, len(input)),
	}
	if options.Model != nil {
		req.Model = *options.Model
	}
	if options.Temperature != nil {
		req.Temperature = *options.Temperature
	}
	if options.MaxTokens != nil {
		req.MaxTokens = *options.MaxTokens
	}
	for _, msg := range input {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("调用模型失败: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := resp.Choices[0]
	out := schema.AssistantMessage(choice.Message.Content, nil)
	out.ResponseMeta = &schema.ResponseMeta{
		FinishReason: string(choice.FinishReason),
		Usage: &schema.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	return out, nil
}

func toOpenAIRole(role schema.RoleType) string {
	switch role {
	case schema.System:
		return openai.ChatMessageRoleSystem
	case schema.Assistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
