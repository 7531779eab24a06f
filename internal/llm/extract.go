package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches markdown code fences with an optional language tag.
var fencePattern = regexp.MustCompile("(?s)```(\\w*)\\s*\\n(.+?)\\n```")

// ExtractJSON pulls a JSON document out of model output that may be wrapped
// in prose or markdown. Fenced ```json blocks are preferred; otherwise the
// first balanced {...} or [...] in the text is used.
func ExtractJSON(response string) (string, error) {
	if doc, ok := fromFence(response); ok {
		return doc, nil
	}
	if doc, ok := fromRawText(response); ok {
		return doc, nil
	}
	return "", fmt.Errorf("no valid JSON found in response")
}

// ExtractJSONAs extracts JSON and unmarshals it into T.
func ExtractJSONAs[T any](response string) (T, error) {
	var result T

	doc, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal extracted JSON: %w", err)
	}
	return result, nil
}

func fromFence(response string) (string, bool) {
	for _, match := range fencePattern.FindAllStringSubmatch(response, -1) {
		if len(match) < 3 {
			continue
		}
		lang := strings.ToLower(match[1])
		if lang != "" && lang != "json" {
			continue
		}
		content := strings.TrimSpace(match[2])
		if !strings.HasPrefix(content, "{") && !strings.HasPrefix(content, "[") {
			continue
		}
		if json.Valid([]byte(content)) {
			return content, true
		}
	}
	return "", false
}

func fromRawText(response string) (string, bool) {
	objAt := strings.Index(response, "{")
	arrAt := strings.Index(response, "[")

	start, closer := -1, byte('}')
	if objAt >= 0 && (arrAt < 0 || objAt < arrAt) {
		start, closer = objAt, '}'
	} else if arrAt >= 0 {
		start, closer = arrAt, ']'
	}
	if start < 0 {
		return "", false
	}

	doc := balancedPrefix(response[start:], closer)
	if doc != "" && json.Valid([]byte(doc)) {
		return doc, true
	}
	return "", false
}

// balancedPrefix returns the shortest prefix of s that closes the opening
// bracket at s[0], skipping brackets inside string literals.
func balancedPrefix(s string, closer byte) string {
	if len(s) == 0 {
		return ""
	}
	opener := s[0]
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == opener:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
