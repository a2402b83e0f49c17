package lexer

import "strings"

// StripComments removes /* ... */ block comments (non-nested, may span
// multiple lines) and // line comments from input, leaving everything
// else — including the contents of backtick string literals — untouched.
func StripComments(file FileRef, input string) string {
	var b strings.Builder
	s := NewScanner(file, input)
	for {
		tt := s.NextToken()
		if tt == EOFToken {
			break
		}
		if tt == MultilineCommentToken || tt == SinglelineCommentToken {
			continue
		}
		b.WriteString(s.Token())
	}
	return b.String()
}

// NormalizeBrackets collapses all whitespace runs found inside a [...]
// span into a single space, so that a multi-line attribute list such as
//
//	[a,
//	 b,
//	 c]
//
// survives the later whole-text whitespace collapse as a single logical
// token instead of having its newlines turn into statement-breaking noise.
func NormalizeBrackets(file FileRef, input string) string {
	var b strings.Builder
	s := NewScanner(file, input)
	depth := 0
	for {
		tt := s.NextToken()
		if tt == EOFToken {
			break
		}
		switch tt {
		case LeftBracketToken:
			depth++
			b.WriteString(s.Token())
		case RightBracketToken:
			if depth > 0 {
				depth--
			}
			b.WriteString(s.Token())
		case WhitespaceToken:
			if depth > 0 {
				b.WriteByte(' ')
			} else {
				b.WriteString(s.Token())
			}
		default:
			b.WriteString(s.Token())
		}
	}
	return b.String()
}

// CollapseWhitespace collapses every run of whitespace in input to a single
// ascii space, so that e.g. a `.where(...)` continuation written on the
// next source line attaches to the preceding statement.
func CollapseWhitespace(input string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range input {
		if isSpace(r) {
			if !lastWasSpace {
				b.WriteByte(' ')
			}
			lastWasSpace = true
			continue
		}
		lastWasSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// SplitTopLevel splits input on every occurrence of the token type sep
// (CommaToken or SemicolonToken) that occurs at paren/bracket depth zero
// and outside of a backtick string literal.
func SplitTopLevel(file FileRef, input string, sep TokenType) []string {
	var segments []string
	var cur strings.Builder
	s := NewScanner(file, input)
	depth := 0
	for {
		tt := s.NextToken()
		if tt == EOFToken {
			break
		}
		switch tt {
		case LeftParenToken, LeftBracketToken:
			depth++
			cur.WriteString(s.Token())
		case RightParenToken, RightBracketToken:
			if depth > 0 {
				depth--
			}
			cur.WriteString(s.Token())
		default:
			if depth == 0 && tt == sep {
				segments = append(segments, cur.String())
				cur.Reset()
				continue
			}
			cur.WriteString(s.Token())
		}
	}
	segments = append(segments, cur.String())
	return segments
}

// ExtractBalanced returns the content between a matching pair of open/close
// bytes, with the cursor positioned just past the opening byte (depth 1),
// and the remainder of s after the matching close byte. Backtick-string
// content is not scanned for open/close bytes, so a literal paren inside a
// `...` string does not perturb the depth count.
func ExtractBalanced(s string, open, close byte) (inner, rest string, ok bool) {
	depth := 1
	inBacktick := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '`':
			inBacktick = !inBacktick
		case inBacktick:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", s, false
}

// SplitArgsAtDepthZero splits a parameter-list string on commas that occur
// at paren depth zero, so that a nested call like round(val,0) remains a
// single argument when it itself appears as one argument among several.
func SplitArgsAtDepthZero(file FileRef, input string) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	parts := SplitTopLevel(file, trimmed, CommaToken)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
