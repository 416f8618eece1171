package eino

import (
	"encoding/json"
	"fmt"
)

// storyTreeSchemaString 故事树结构化输出约束，节点通过 $defs 递归
const storyTreeSchemaString = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "title": {"type": "string"},
    "rootNode": {"$ref": "#/$defs/node"}
  },
  "required": ["title", "rootNode"],
  "$defs": {
    "node": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "content": {"type": "string"},
        "isEnding": {"type": "boolean"},
        "isWinningEnding": {"type": "boolean"},
        "options": {
          "type": "array",
          "items": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "text": {"type": "string"},
              "nextNode": {"$ref": "#/$defs/node"}
            },
            "required": ["text", "nextNode"]
          }
        }
      },
      "required": ["content", "isEnding", "isWinningEnding", "options"]
    }
  }
}`

func storyTreeSchema() (map[string]interface{}, error) {
	var schemaMap map[string]interface{}
	if err := json.Unmarshal([]byte(storyTreeSchemaString), &schemaMap); err != nil {
		return nil, fmt.Errorf("Schema解析失败: %w", err)
	}
	return schemaMap, nil
}
