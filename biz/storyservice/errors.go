package storyservice

import (
	"errors"
	"fmt"
)

var (
	// 以下三类属于模型输出问题，生成循环内会重试
	EMPTY_RESPONSE   = errors.New("模型返回内容为空")
	MALFORMED_JSON   = errors.New("模型返回内容不是合法的JSON")
	SCHEMA_VIOLATION = errors.New("模型返回内容不符合故事结构")

	SESSION_ID_NOT_NULL = errors.New("会话ID不能为空")
	STORY_ID_NOT_NULL   = errors.New("故事ID不能为空")
	STORY_NOT_EXIST     = errors.New("该故事不存在")
	STORY_GRAPH_BROKEN  = errors.New("故事节点引用无法解析")
)

// GenerationFailedError 重试次数用尽，Err 为最后一次失败原因
type GenerationFailedError struct {
	Attempts int
	Err      error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("故事生成失败，共尝试%d次: %v", e.Attempts, e.Err)
}

func (e *GenerationFailedError) Unwrap() error { return e.Err }

// MaterializationError 生成成功但落库失败，不重试
type MaterializationError struct {
	Err error
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("故事生成成功但保存失败: %v", e.Err)
}

func (e *MaterializationError) Unwrap() error { return e.Err }

// schemaErrorf 带 JSON 路径的结构错误
func schemaErrorf(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", SCHEMA_VIOLATION, path, fmt.Sprintf(format, args...))
}
