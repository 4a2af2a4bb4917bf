// Package scriptwriter turns a finished prompt into narration text through
// one of the configured LLM backends.
package scriptwriter

import "strings"

// stripFences removes a markdown code fence wrapped around the whole
// response. Models sometimes fence the script even when asked for plain
// text.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	// Drop a language tag on the opening fence, e.g. ```markdown.
	if i := strings.Index(content, "\n"); i >= 0 && !strings.ContainsAny(content[:i], " `") {
		content = content[i+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
