// Package shell contains a minimal shell-style tokenizer for command strings
// that come from the provisioning spec. Variables and command substitutions
// are not handled; the tokens are passed to exec directly, never to a shell.
package shell

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMismatchedQuotes is returned when the input string has mismatched quotes.
	ErrMismatchedQuotes = errors.New("mismatched quotes")

	// ErrTrailingBackslash is returned when the input string ends with a trailing backslash.
	ErrTrailingBackslash = errors.New("trailing backslash")
)

// Split splits the input string respecting shell-like quoted segments.
func Split(input string) ([]string, error) {
	var segments []string
	var sb strings.Builder
	var inDoubleQuotes, inSingleQuotes, isEscaped, inSegment bool

	for i := 0; i < len(input); i++ {
		c := input[i]

		if isEscaped {
			sb.WriteByte(c)
			isEscaped = false
			continue
		}

		switch {
		case c == '\\' && !inSingleQuotes:
			isEscaped = true
			inSegment = true
		case c == '"' && !inSingleQuotes:
			inDoubleQuotes = !inDoubleQuotes
			inSegment = true
		case c == '\'' && !inDoubleQuotes:
			inSingleQuotes = !inSingleQuotes
			inSegment = true
		case (c == ' ' || c == '\t') && !inDoubleQuotes && !inSingleQuotes:
			if inSegment {
				segments = append(segments, sb.String())
				sb.Reset()
				inSegment = false
			}
		default:
			sb.WriteByte(c)
			inSegment = true
		}
	}

	if inDoubleQuotes || inSingleQuotes {
		return nil, fmt.Errorf("split %q: %w", input, ErrMismatchedQuotes)
	}

	if isEscaped {
		return nil, fmt.Errorf("split %q: %w", input, ErrTrailingBackslash)
	}

	if inSegment {
		segments = append(segments, sb.String())
	}

	return segments, nil
}
