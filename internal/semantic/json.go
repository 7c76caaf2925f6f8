package semantic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadJSON marks a model response from which no valid JSON payload could
// be recovered. Callers treat it as a recoverable phase failure, never a
// fatal fault.
var ErrBadJSON = errors.New("no valid JSON in model response")

// coerceJSON recovers a JSON object from a model response that may wrap it
// in prose or a fenced code block. Attempts, in order: the whole response;
// the first fenced block; the first balanced {...} span.
func coerceJSON(raw string) ([]byte, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: empty response", ErrBadJSON)
	}
	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	if block, ok := firstFencedBlock(s); ok && json.Valid([]byte(block)) {
		return []byte(block), nil
	}
	if span, ok := firstBalancedObject(s); ok && json.Valid([]byte(span)) {
		return []byte(span), nil
	}
	return nil, fmt.Errorf("%w: %.80q", ErrBadJSON, raw)
}

// unmarshalStrictEnough decodes into the expected result shape. Unknown
// fields are tolerated (models add commentary fields freely); type
// mismatches are not.
func unmarshalStrictEnough(raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	return nil
}

// firstFencedBlock returns the contents of the first ``` fence, tolerating
// an optional language tag on the opening line.
func firstFencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop a language tag like "json" if the first line is not content.
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine == "" || !strings.ContainsAny(firstLine, "{[") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// firstBalancedObject scans for the first balanced top-level {...} span,
// respecting string literals and escapes.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
