package storyservice

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const DefaultTheme = "fantasy"

const storySystemPrompt = `You write interactive choose-your-own-adventure stories.
Produce one complete branching story with several paths and several endings.

Story requirements:
1. A short, evocative title.
2. An opening situation (the root node) that offers 2-3 choices.
3. Every choice leads to a new node. A node is either a branch with 2-3 choices or an ending.
4. Endings may be winning or losing. At least one path must reach a winning ending.

Structure rules:
- The tree is 3-4 levels deep, counting the root node.
- Every non-ending node has 2-3 options; ending nodes have no options.
- Vary the path lengths so that some paths end earlier than others.
- Set "isWinningEnding" only on ending nodes.

Output rules:
- Reply with exactly one JSON object and nothing else.
- No explanations, no markdown, no code fences.

The JSON object must follow this structure:
{{.format_instructions}}`

const storyUserPrompt = `Create the story with this theme: {{.theme}}`

// storyFormatInstructions 嵌入系统提示词的输出结构说明
const storyFormatInstructions = `{
  "title": "Story title",
  "rootNode": {
    "content": "The opening situation",
    "isEnding": false,
    "isWinningEnding": false,
    "options": [
      {
        "text": "Text of the first choice",
        "nextNode": {
          "content": "What happens after the first choice",
          "isEnding": true,
          "isWinningEnding": true
        }
      },
      {
        "text": "Text of the second choice",
        "nextNode": {
          "content": "What happens after the second choice",
          "isEnding": false,
          "isWinningEnding": false,
          "options": ["...nested options with the same shape..."]
        }
      }
    ]
  }
}`

var storyTemplate = prompt.FromMessages(schema.GoTemplate,
	schema.SystemMessage(storySystemPrompt),
	schema.UserMessage(storyUserPrompt),
)

// BuildStoryPrompt 生成 system + user 两条消息，主题为空时使用 defaultTheme
func BuildStoryPrompt(ctx context.Context, theme, defaultTheme string) ([]*schema.Message, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = strings.TrimSpace(defaultTheme)
	}
	if theme == "" {
		theme = DefaultTheme
	}
	return storyTemplate.Format(ctx, map[string]any{
		"format_instructions": storyFormatInstructions,
		"theme":               theme,
	})
}
