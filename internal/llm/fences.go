package llm

import "strings"

// StripFences removes a surrounding markdown code fence (``` or ```latex) from model output.
func StripFences(text string) string {
	out := strings.TrimSpace(text)
	if strings.HasPrefix(out, "```") {
		if nl := strings.IndexByte(out, '\n'); nl >= 0 {
			out = out[nl+1:]
		} else {
			out = strings.TrimPrefix(out, "```")
		}
	}
	out = strings.TrimSpace(out)
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}
