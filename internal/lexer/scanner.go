// Package lexer provides a small rune-level scanner used to split picorules
// rule text into statement segments and balanced sub-structure (brackets,
// parentheses, backtick string literals, comments) without having to parse
// the text into a full expression AST.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/smasher164/xid"
)

// FileRef identifies the source of a scanned text (a ruleblock name, in
// this domain, rather than a filesystem path).
type FileRef string

// Pos is a 1-indexed line/column position within a FileRef, as reported
// by Scanner.Start and Scanner.Stop.
type Pos struct {
	File FileRef
	Line int
	Col  int
}

type TokenType int

const (
	EOFToken TokenType = iota
	WhitespaceToken
	MultilineCommentToken
	SinglelineCommentToken
	BacktickStringToken
	LeftParenToken
	RightParenToken
	LeftBracketToken
	RightBracketToken
	CommaToken
	SemicolonToken
	IdentifierToken
	OtherToken
)

// Scanner is a cursor over a rule text buffer. It is deliberately much
// smaller than a full SQL tokenizer: picorules rule text is a bespoke DSL,
// not SQL, so the scanner only needs to recognise the handful of
// structural tokens the parser cares about (brackets, parens, commas,
// semicolons, comments, backtick strings, identifiers) and pass everything
// else through as opaque "other" runs.
type Scanner struct {
	input string
	file  FileRef

	startIndex int
	curIndex   int
	tokenType  TokenType

	startLine, stopLine           int
	indexAtStartLine, indexAtStopLine int
}

func NewScanner(file FileRef, input string) *Scanner {
	return &Scanner{input: input, file: file}
}

func (s *Scanner) TokenType() TokenType { return s.tokenType }
func (s *Scanner) Token() string        { return s.input[s.startIndex:s.curIndex] }

func (s *Scanner) Start() Pos {
	return Pos{File: s.file, Line: s.startLine + 1, Col: s.startIndex - s.indexAtStartLine + 1}
}

func (s *Scanner) Stop() Pos {
	return Pos{File: s.file, Line: s.stopLine + 1, Col: s.curIndex - s.indexAtStopLine + 1}
}

func (s *Scanner) bumpLine(offset int) {
	s.stopLine++
	s.indexAtStopLine = s.curIndex + offset + 1
}

// NextToken scans the next token and advances the cursor past it.
func (s *Scanner) NextToken() TokenType {
	s.startIndex = s.curIndex
	s.startLine = s.stopLine
	s.indexAtStartLine = s.indexAtStopLine

	r, w := utf8.DecodeRuneInString(s.input[s.curIndex:])
	switch {
	case w == 0:
		s.tokenType = EOFToken
		return s.tokenType
	case r == '(':
		s.curIndex += w
		s.tokenType = LeftParenToken
	case r == ')':
		s.curIndex += w
		s.tokenType = RightParenToken
	case r == '[':
		s.curIndex += w
		s.tokenType = LeftBracketToken
	case r == ']':
		s.curIndex += w
		s.tokenType = RightBracketToken
	case r == ',':
		s.curIndex += w
		s.tokenType = CommaToken
	case r == ';':
		s.curIndex += w
		s.tokenType = SemicolonToken
	case r == '`':
		s.curIndex += w
		s.tokenType = s.scanBacktickString()
	case unicode.IsSpace(r):
		s.tokenType = s.scanWhitespace()
	case r == '/' && strings.HasPrefix(s.input[s.curIndex+w:], "*"):
		s.curIndex += w + 1
		s.tokenType = s.scanMultilineComment()
	case r == '/' && strings.HasPrefix(s.input[s.curIndex+w:], "/"):
		s.curIndex += w + 1
		s.tokenType = s.scanSinglelineComment()
	case r == '_' || xid.Start(r):
		s.curIndex += w
		s.scanIdentifier()
		s.tokenType = IdentifierToken
	default:
		s.curIndex += w
		s.tokenType = OtherToken
	}
	return s.tokenType
}

func (s *Scanner) scanIdentifier() {
	for i, r := range s.input[s.curIndex:] {
		if !(xid.Continue(r) || r == '_') {
			s.curIndex += i
			return
		}
	}
	s.curIndex = len(s.input)
}

func (s *Scanner) scanWhitespace() TokenType {
	for i, r := range s.input[s.curIndex:] {
		if r == '\n' {
			s.bumpLine(i)
		}
		if !unicode.IsSpace(r) {
			s.curIndex += i
			return WhitespaceToken
		}
	}
	s.curIndex = len(s.input)
	return WhitespaceToken
}

// scanMultilineComment assumes the cursor is positioned just after "/*".
func (s *Scanner) scanMultilineComment() TokenType {
	prevWasStar := false
	for i, r := range s.input[s.curIndex:] {
		if r == '*' {
			prevWasStar = true
		} else if prevWasStar && r == '/' {
			s.curIndex += i + 1
			return MultilineCommentToken
		} else {
			prevWasStar = false
			if r == '\n' {
				s.bumpLine(i)
			}
		}
	}
	s.curIndex = len(s.input)
	return MultilineCommentToken
}

// scanSinglelineComment assumes the cursor is positioned just after "//".
func (s *Scanner) scanSinglelineComment() TokenType {
	end := strings.IndexByte(s.input[s.curIndex:], '\n')
	if end == -1 {
		s.curIndex = len(s.input)
	} else {
		s.curIndex += end
	}
	return SinglelineCommentToken
}

// scanBacktickString assumes the cursor is positioned just after the
// opening backtick.
func (s *Scanner) scanBacktickString() TokenType {
	for i, r := range s.input[s.curIndex:] {
		if r == '\n' {
			s.bumpLine(i)
		}
		if r == '`' {
			s.curIndex += i + 1
			return BacktickStringToken
		}
	}
	s.curIndex = len(s.input)
	return BacktickStringToken
}
