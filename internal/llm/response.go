package llm

import (
	"encoding/json"
	"strings"
)

// Normalised values of Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// completion is a provider's raw answer before schema checks.
type completion struct {
	text  string
	usage Usage
	model string
	stop  string
}

// finish turns a completion into a Response. For structured requests the
// text is unwrapped from any markdown fence, truncation is an error and the
// JSON is validated against the schema.
func finish(req Request, c completion) (*Response, error) {
	content := json.RawMessage(c.text)
	if req.Schema != nil {
		content = json.RawMessage(stripFence(c.text))
		if c.stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	if c.usage.TotalTokens == 0 {
		c.usage.TotalTokens = c.usage.InputTokens + c.usage.OutputTokens
	}
	return &Response{
		Content:    content,
		Usage:      c.usage,
		Model:      c.model,
		StopReason: c.stop,
	}, nil
}

// stripFence removes a ```json ... ``` wrapper some models put around JSON
// even when asked not to.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
