package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers + literals
	IDENT    = "IDENT"    // counter, set-content-type, x
	INT      = "INT"      // 42
	FLOAT    = "FLOAT"    // 3.14
	STRING   = "STRING"   // "hello"
	EMBEDDED = "EMBEDDED" // ```html ... ```
	HOLE     = "HOLE"     // _name

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"

	UNDERSCORE = "_"
	CHAIN      = "/>"

	LT    = "<"
	LT_EQ = "<="
	GT    = ">"
	GT_EQ = ">="

	EQ        = "=="
	NOT_EQ    = "!="
	DIVISIBLE = "%%"

	LOGICAL_AND = "&&"
	LOGICAL_OR  = "||"

	// Delimiters
	COMMA     = ","
	COLON     = ":"
	SEMICOLON = ";"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	AGENT = "AGENT"
	SPAWN = "SPAWN"
	TRUE  = "TRUE"
	FALSE = "FALSE"
	NIL   = "NIL"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src byte index of the token
}

var keywords = map[string]TokenType{
	"agent": AGENT,
	"spawn": SPAWN,
	"true":  TRUE,
	"false": FALSE,
	"nil":   NIL,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
