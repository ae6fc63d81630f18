package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	var tok token.Token

	switch l.ch {
	case '\n':
		tok = newToken(token.NEWLINE, l.ch, l.position)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, l.position)
	case '=':
		tok = l.handleCompoundToken(token.ASSIGN, '=', token.EQ)
	case '+':
		tok = newToken(token.PLUS, l.ch, l.position)
	case '-':
		tok = newToken(token.MINUS, l.ch, l.position)
	case '!':
		tok = l.handleCompoundToken(token.BANG, '=', token.NOT_EQ)
	case '*':
		tok = newToken(token.ASTERISK, l.ch, l.position)
	case '/':
		tok = l.handleCompoundToken(token.SLASH, '>', token.CHAIN)
	case '%':
		tok = l.handleCompoundToken(token.PERCENT, '%', token.DIVISIBLE)
	case '<':
		tok = l.handleCompoundToken(token.LT, '=', token.LT_EQ)
	case '>':
		tok = l.handleCompoundToken(token.GT, '=', token.GT_EQ)
	case '&':
		tok = l.handleCompoundToken(token.ILLEGAL, '&', token.LOGICAL_AND)
	case '|':
		tok = l.handleCompoundToken(token.ILLEGAL, '|', token.LOGICAL_OR)
	case ',':
		tok = newToken(token.COMMA, l.ch, l.position)
	case ':':
		tok = newToken(token.COLON, l.ch, l.position)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.position)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.position)
	case '{':
		tok = newToken(token.LBRACE, l.ch, l.position)
	case '}':
		tok = newToken(token.RBRACE, l.ch, l.position)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, l.position)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, l.position)
	case '"':
		start := l.position
		str, ok := l.readString()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: str, Position: start}
		}
		return token.Token{Type: token.STRING, Literal: str, Position: start}
	case '`':
		if l.peekChar() == '`' && l.peekTwoChars() == '`' {
			start := l.position
			raw, ok := l.readEmbedded()
			if !ok {
				return token.Token{Type: token.ILLEGAL, Literal: raw, Position: start}
			}
			return token.Token{Type: token.EMBEDDED, Literal: raw, Position: start}
		}
		tok = newToken(token.ILLEGAL, l.ch, l.position)
	case '_':
		start := l.position
		if isLetter(l.peekChar()) && l.peekChar() != '_' {
			l.readChar()
			name := l.readIdentifier()
			return token.Token{Type: token.HOLE, Literal: name, Position: start}
		}
		tok = newToken(token.UNDERSCORE, l.ch, l.position)
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		tok.Position = l.position
	default:
		if isLetter(l.ch) {
			start := l.position
			literal := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(literal), Literal: literal, Position: start}
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = newToken(token.ILLEGAL, l.ch, l.position)
	}

	l.readChar()
	return tok
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	startPosition := l.position
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: t1, Literal: literal, Position: startPosition}
	}
	return newToken(t, l.ch, startPosition)
}

// skipWhitespace consumes spaces, tabs, carriage returns and comments.
// Newlines are significant (statement separators) and are not skipped.
func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '#':
			l.skipToLineEnd()
		case '/':
			if l.peekChar() == '/' {
				l.skipToLineEnd()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// peekTwoChars returns the rune after next without advancing; returns 0 if unavailable
func (l *Lexer) peekTwoChars() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	idx := l.readPosition + size
	if idx >= len(l.input) {
		return 0
	}
	r2, _ := utf8.DecodeRuneInString(l.input[idx:])
	return r2
}

// readIdentifier returns the substring (bytes) covering the identifier runes.
// Interior dashes are part of the identifier when followed by a letter, so
// selector words like set-content-type lex as a single token while `a - b`
// and `a -1` stay arithmetic.
func (l *Lexer) readIdentifier() string {
	start := l.position
	for {
		if isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
			continue
		}
		if l.ch == '-' && isLetter(l.peekChar()) {
			l.readChar()
			continue
		}
		break
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() token.Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	literal := l.input[start:l.position]
	if isFloat {
		return token.Token{Type: token.FLOAT, Literal: literal, Position: start}
	}
	return token.Token{Type: token.INT, Literal: literal, Position: start}
}

// readString consumes a double-quoted string with escape sequences and
// returns its unescaped contents. The closing quote is consumed.
func (l *Lexer) readString() (string, bool) {
	var out strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case '"':
			l.readChar()
			return out.String(), true
		case 0:
			return out.String(), false
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case 'r':
				out.WriteRune('\r')
			case '"':
				out.WriteRune('"')
			case '\\':
				out.WriteRune('\\')
			case 0:
				return out.String(), false
			default:
				out.WriteRune(l.ch)
			}
		default:
			out.WriteRune(l.ch)
		}
	}
}

// readEmbedded consumes a fenced verbatim block ```tags\n ... ``` and
// returns everything between the fences, tag line included. The text is
// kept byte-for-byte; the parser splits the tag line off.
func (l *Lexer) readEmbedded() (string, bool) {
	l.readChar() // consume first `
	l.readChar() // consume second `
	l.readChar() // consume third `
	start := l.position
	for {
		if l.ch == 0 {
			return l.input[start:l.position], false
		}
		if l.ch == '`' && l.peekChar() == '`' && l.peekTwoChars() == '`' {
			raw := l.input[start:l.position]
			l.readChar()
			l.readChar()
			l.readChar()
			return raw, true
		}
		l.readChar()
	}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return unicode.IsDigit(ch)
}

func newToken(tokenType token.TokenType, ch rune, position int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Position: position}
}
