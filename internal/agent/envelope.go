package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zentest-dev/zentest/internal/model"
)

// envelope is the JSON shape the model is asked to respond with: a short
// reasoning string and the batch of actions to run before asking again.
type envelope struct {
	Reasoning string        `json:"reasoning"`
	Actions   []model.Action `json:"actions"`
}

// parseEnvelope extracts an envelope from a raw model response, which may
// be bare JSON, JSON fenced in a ```json code block, or JSON embedded in
// surrounding prose. It tries, in order: the whole trimmed text as JSON, a
// fenced code block, and the longest balanced brace substring that mentions
// "actions". If the result still fails to parse and looks truncated (an
// unbalanced brace/bracket count), it attempts a close-the-brackets repair
// before giving up.
func parseEnvelope(raw string) (envelope, error) {
	candidates := []string{strings.TrimSpace(raw)}

	if fenced, ok := extractFenced(raw); ok {
		candidates = append(candidates, fenced)
	}
	if balanced, ok := extractBalanced(raw); ok {
		candidates = append(candidates, balanced)
	}

	var lastErr error
	for _, c := range candidates {
		if c == "" {
			continue
		}
		var env envelope
		if err := json.Unmarshal([]byte(c), &env); err == nil {
			return env, nil
		} else {
			lastErr = err
		}
		if repaired, err := repairTruncated(c); err == nil {
			var env2 envelope
			if err := json.Unmarshal([]byte(repaired), &env2); err == nil {
				return env2, nil
			}
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no JSON object found in response")
	}
	return envelope{}, fmt.Errorf("parse model response: %w", lastErr)
}

// ParseSingleAction parses a model response expected to contain exactly one
// corrected action — the shape internal/heal's smart-rewrite tier asks for
// when fixing a single failing step rather than continuing a whole run.
func ParseSingleAction(raw string) (model.Action, string, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return model.Action{}, "", err
	}
	if len(env.Actions) == 0 {
		return model.Action{}, "", fmt.Errorf("model response contained no actions")
	}
	return env.Actions[0], env.Reasoning, nil
}

// extractFenced pulls the content of the first ```json or ``` fenced code
// block out of text.
func extractFenced(text string) (string, bool) {
	idx := strings.Index(text, "```")
	if idx < 0 {
		return "", false
	}
	rest := text[idx+3:]
	rest = strings.TrimPrefix(rest, "json")
	rest = strings.TrimPrefix(rest, "JSON")
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// extractBalanced scans text for every top-level {...} substring, returning
// the longest one that contains the literal "actions" key — the model
// sometimes wraps its JSON in explanatory prose before or after it.
func extractBalanced(text string) (string, bool) {
	best := ""
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range text {
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' && inString {
			escaped = true
			continue
		}
		if r == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch r {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					candidate := text[start : i+1]
					if strings.Contains(candidate, `"actions"`) && len(candidate) > len(best) {
						best = candidate
					}
					start = -1
				}
			}
		}
	}

	return best, best != ""
}

// repairTruncated closes unterminated braces/brackets left by a response
// cut short at a token limit, trimming any trailing comma first.
func repairTruncated(s string) (string, error) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object found")
	}
	s = s[start:]

	var stack []rune
	inString := false
	escaped := false
	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' && inString {
			escaped = true
			continue
		}
		if r == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch r {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) == 0 {
		return s, nil
	}

	trimmed := strings.TrimRight(s, " \t\n\r,")
	for i := len(stack) - 1; i >= 0; i-- {
		trimmed += string(stack[i])
	}
	return trimmed, nil
}
