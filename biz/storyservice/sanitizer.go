package storyservice

import (
	"regexp"
	"strings"
)

// 独占一行的代码块围栏，允许带语言标记，例如 ```json
var fenceLine = regexp.MustCompile("^```[A-Za-z0-9_+.-]*$")

// SanitizeResponse 去掉模型输出首尾的代码块围栏和空白
// 结果为空时返回 EMPTY_RESPONSE
func SanitizeResponse(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	for {
		stripped := stripFences(text)
		if stripped == text {
			break
		}
		text = stripped
	}
	if text == "" {
		return "", EMPTY_RESPONSE
	}
	return text, nil
}

// stripFences 去掉一层首行/末行围栏
func stripFences(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && fenceLine.MatchString(strings.TrimSpace(lines[0])) {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && fenceLine.MatchString(strings.TrimSpace(lines[n-1])) {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
