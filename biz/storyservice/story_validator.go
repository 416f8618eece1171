package storyservice

import (
	"encoding/json"
	"fmt"
	"strings"

	"adventure/biz/entity"
)

// ParseStoryTree 解析清洗后的模型输出，逐层把无类型的 map 转成故事树
func ParseStoryTree(text string) (*entity.StoryTree, error) {
	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", MALFORMED_JSON, err)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, schemaErrorf("$", "顶层必须是对象，实际为%s", typeName(decoded))
	}

	title, err := requireText(obj, "title", "title")
	if err != nil {
		return nil, err
	}

	rawRoot, ok := obj["rootNode"]
	if !ok || rawRoot == nil {
		return nil, schemaErrorf("rootNode", "缺少必填字段")
	}
	root, err := coerceNode(rawRoot, "rootNode")
	if err != nil {
		return nil, err
	}

	return &entity.StoryTree{Title: title, RootNode: root}, nil
}

// coerceNode 递归转换一个节点及其所有后代
func coerceNode(raw any, path string) (*entity.StoryNodeTree, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, schemaErrorf(path, "节点必须是对象，实际为%s", typeName(raw))
	}

	content, err := requireText(obj, "content", path+".content")
	if err != nil {
		return nil, err
	}

	rawEnding, ok := obj["isEnding"]
	if !ok {
		return nil, schemaErrorf(path+".isEnding", "缺少必填字段")
	}
	isEnding, ok := rawEnding.(bool)
	if !ok {
		return nil, schemaErrorf(path+".isEnding", "必须是布尔值，实际为%s", typeName(rawEnding))
	}

	isWinning := false
	if rawWinning, ok := obj["isWinningEnding"]; ok && rawWinning != nil {
		b, ok := rawWinning.(bool)
		if !ok {
			return nil, schemaErrorf(path+".isWinningEnding", "必须是布尔值，实际为%s", typeName(rawWinning))
		}
		isWinning = b
	}

	var rawOptions []any
	if v, ok := obj["options"]; ok && v != nil {
		list, ok := v.([]any)
		if !ok {
			return nil, schemaErrorf(path+".options", "必须是数组，实际为%s", typeName(v))
		}
		rawOptions = list
	}

	node := &entity.StoryNodeTree{Content: content, IsEnding: isEnding}
	if isEnding {
		if len(rawOptions) > 0 {
			return nil, schemaErrorf(path+".options", "结局节点不能有选项")
		}
		node.IsWinningEnding = isWinning
		return node, nil
	}

	if len(rawOptions) == 0 {
		return nil, schemaErrorf(path+".options", "非结局节点至少需要一个选项")
	}
	node.Options = make([]entity.StoryOptionTree, 0, len(rawOptions))
	for i, rawOpt := range rawOptions {
		optPath := fmt.Sprintf("%s.options[%d]", path, i)
		opt, err := coerceOption(rawOpt, optPath)
		if err != nil {
			return nil, err
		}
		node.Options = append(node.Options, opt)
	}
	return node, nil
}

func coerceOption(raw any, path string) (entity.StoryOptionTree, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return entity.StoryOptionTree{}, schemaErrorf(path, "选项必须是对象，实际为%s", typeName(raw))
	}
	text, err := requireText(obj, "text", path+".text")
	if err != nil {
		return entity.StoryOptionTree{}, err
	}
	rawNext, ok := obj["nextNode"]
	if !ok || rawNext == nil {
		return entity.StoryOptionTree{}, schemaErrorf(path+".nextNode", "缺少必填字段")
	}
	next, err := coerceNode(rawNext, path+".nextNode")
	if err != nil {
		return entity.StoryOptionTree{}, err
	}
	return entity.StoryOptionTree{Text: text, NextNode: next}, nil
}

// requireText 必填且去空白后非空的字符串字段
func requireText(obj map[string]any, key, path string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", schemaErrorf(path, "缺少必填字段")
	}
	s, ok := v.(string)
	if !ok {
		return "", schemaErrorf(path, "必须是字符串，实际为%s", typeName(v))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", schemaErrorf(path, "不能为空")
	}
	return s, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
