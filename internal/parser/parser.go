package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/ast"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/lexer"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/token"
)

const (
	_          int = iota
	LOWEST         // entry
	LOGICAL_OR     // ||
	LOGICAL_AND    // &&
	EQUALS         // == != %%
	COMPARISON     // > < >= <=
	SUM            // + -
	PRODUCT        // * / %
	PREFIX         // -X or !X
)

var precedences = map[token.TokenType]int{
	token.LOGICAL_OR:  LOGICAL_OR,
	token.LOGICAL_AND: LOGICAL_AND,
	token.EQ:          EQUALS,
	token.NOT_EQ:      EQUALS,
	token.DIVISIBLE:   EQUALS,
	token.LT:          COMPARISON,
	token.LT_EQ:       COMPARISON,
	token.GT:          COMPARISON,
	token.GT_EQ:       COMPARISON,
	token.PLUS:        SUM,
	token.MINUS:       SUM,
	token.SLASH:       PRODUCT,
	token.ASTERISK:    PRODUCT,
	token.PERCENT:     PRODUCT,
}

// argumentStarts are the token types that can begin another term of the
// send currently being parsed. Send parsing is greedy: it extends the
// current send until the next token is not one of these.
var argumentStarts = map[token.TokenType]bool{
	token.IDENT:    true,
	token.INT:      true,
	token.FLOAT:    true,
	token.STRING:   true,
	token.TRUE:     true,
	token.FALSE:    true,
	token.NIL:      true,
	token.LPAREN:   true,
	token.LBRACKET: true,
	token.LBRACE:   true,
	token.EMBEDDED: true,
	token.SPAWN:    true,
}

type prefixParseFn func() ast.Expression

type Parser struct {
	l   *lexer.Lexer
	src string

	errors   []string
	firstErr *Error

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
}

func New(l *lexer.Lexer, source string) *Parser {
	p := &Parser{
		l:      l,
		src:    source,
		errors: []string{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.NIL, p.parseNil)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseListLiteral)
	p.registerPrefix(token.LBRACE, p.parseBlockOrMapLiteral)
	p.registerPrefix(token.EMBEDDED, p.parseEmbeddedText)
	p.registerPrefix(token.SPAWN, p.parseSpawnExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse is the convenience entry point: source in, program or first error out.
func Parse(source string) (*ast.Program, error) {
	p := New(lexer.New(source), source)
	program := p.ParseProgram()
	if err := p.FirstError(); err != nil {
		return nil, err
	}
	return program, nil
}

func (p *Parser) Errors() []string { return p.errors }

// FirstError returns the primary structured error, or nil.
func (p *Parser) FirstError() *Error { return p.firstErr }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) addError(message string, args ...interface{}) {
	line, col := GetLineAndColumn(p.src, p.curToken.Position)
	m := fmt.Sprintf(message, args...)
	msg := fmt.Sprintf("[%3d:%2d] %s", line, col, m)
	p.errors = append(p.errors, msg)
	if p.firstErr == nil {
		p.firstErr = &Error{
			Position: p.curToken.Position,
			Line:     line,
			Column:   col,
			Msg:      m,
		}
	}
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	line, col := GetLineAndColumn(p.src, p.peekToken.Position)
	m := fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type)
	msg := fmt.Sprintf("[%3d:%2d] %s", line, col, m)
	p.errors = append(p.errors, msg)
	if p.firstErr == nil {
		p.firstErr = &Error{
			Position: p.peekToken.Position,
			Line:     line,
			Column:   col,
			Expected: string(t),
			Found:    string(p.peekToken.Type),
		}
	}
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses until EOF or the first error; no cascading recovery.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if len(p.errors) > 0 {
			break
		}
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.AGENT:
		return p.parseAgentDecl()
	case token.LBRACKET:
		return p.parseBracketStatement()
	case token.ASTERISK:
		return p.parseExpandStatement()
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseAssignStatement()
		}
		if p.peekTokenIs(token.COLON) {
			return p.parseFieldStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// agent Name { fields and handlers }
func (p *Parser) parseAgentDecl() ast.Statement {
	decl := &ast.AgentDecl{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	decl.Body = p.parseBlock()

	return decl
}

// name = sendable-expression
func (p *Parser) parseAssignStatement() ast.Statement {
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	p.nextToken() // cur = '='
	stmt := &ast.AssignStatement{Token: p.curToken, Name: name}

	p.nextToken()
	stmt.Value = p.parseSendableExpression()

	return stmt
}

// name: Type [= sendable-expression]
func (p *Parser) parseFieldStatement() ast.Statement {
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	p.nextToken() // cur = ':'
	stmt := &ast.FieldStatement{Token: p.curToken, Name: name}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.TypeName = p.curToken.Literal

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseSendableExpression()
	}

	return stmt
}

// *expr runs a captured block.
func (p *Parser) parseExpandStatement() ast.Statement {
	stmt := &ast.ExpandStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseSendableExpression()
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseSendableExpression()
	return stmt
}

// parseBracketStatement disambiguates `[pattern] { body }` handlers from
// list-literal expression statements. The bracketed content is parsed as a
// pattern first; when no body follows, the terms are lowered back to
// expressions (holes cannot be).
func (p *Parser) parseBracketStatement() ast.Statement {
	bracket := p.curToken
	pattern := p.parsePattern()
	if pattern == nil {
		return nil
	}

	if p.peekTokenIs(token.LBRACE) {
		p.nextToken() // cur = '{'
		body := p.parseBlock()
		return &ast.HandlerStatement{Token: bracket, Pattern: pattern, Body: body}
	}

	elements := make([]ast.Expression, 0, len(pattern.Terms))
	for _, term := range pattern.Terms {
		switch term := term.(type) {
		case *ast.WordTerm:
			elements = append(elements, &ast.Identifier{Token: term.Token, Value: term.Value})
		case *ast.LiteralTerm:
			elements = append(elements, term.Value)
		default:
			p.addError("pattern %q needs a handler body", pattern.String())
			return nil
		}
	}
	list := &ast.ListLiteral{Token: bracket, Elements: elements}

	stmt := &ast.ExpressionStatement{Token: bracket}
	stmt.Expression = p.parseSendableFrom(list)
	return stmt
}

// parseSendableExpression parses one statement-level expression: a Pratt
// expression optionally extended, greedily, into a message send, then
// optionally chained with `/>` pipelines.
func (p *Parser) parseSendableExpression() ast.Expression {
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	return p.parseSendableFrom(first)
}

func (p *Parser) parseSendableFrom(first ast.Expression) ast.Expression {
	expr := p.extendSend(first)

	for p.peekTokenIs(token.CHAIN) {
		p.nextToken() // cur = '/>'
		chainTok := p.curToken
		p.nextToken()
		right := p.parseExpression(LOWEST)
		if right == nil {
			return nil
		}
		target := p.extendSend(right)
		send, ok := target.(*ast.SendExpression)
		if !ok {
			send = &ast.SendExpression{Token: chainTok, Terms: []ast.Expression{target}}
		}
		expr = &ast.PipeExpression{Token: chainTok, Left: expr, Right: send}
	}

	return expr
}

// extendSend greedily absorbs argument-shaped tokens into a send.
func (p *Parser) extendSend(first ast.Expression) ast.Expression {
	if !argumentStarts[p.peekToken.Type] {
		return first
	}

	terms := []ast.Expression{first}
	for argumentStarts[p.peekToken.Type] {
		p.nextToken()
		arg := p.parseArgumentExpression()
		if arg == nil {
			return nil
		}
		terms = append(terms, arg)
	}

	return &ast.SendExpression{Token: sendToken(first), Terms: terms}
}

func sendToken(first ast.Expression) token.Token {
	switch first := first.(type) {
	case *ast.Identifier:
		return first.Token
	case *ast.SendExpression:
		return first.Token
	}
	return token.Token{}
}

// parseArgumentExpression parses exactly one send argument: a primary
// expression with no infix continuation. Compound arguments must be
// parenthesized, as in `counter increase (1 + 2)`.
func (p *Parser) parseArgumentExpression() ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	return prefix()
}

func (p *Parser) noPrefixParseFnError(t token.TokenType) {
	line, col := GetLineAndColumn(p.src, p.curToken.Position)
	m := fmt.Sprintf("unexpected token %s", t)
	msg := fmt.Sprintf("[%3d:%2d] %s", line, col, m)
	p.errors = append(p.errors, msg)
	if p.firstErr == nil {
		p.firstErr = &Error{
			Position: p.curToken.Position,
			Line:     line,
			Column:   col,
			Expected: "expression",
			Found:    string(t),
		}
	}
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && precedence < p.peekPrecedence() {
		p.nextToken()
		leftExp = p.parseInfixExpression(leftExp)
	}

	return leftExp
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)

	return expression
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)

	return expression
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError("could not parse %q as integer", p.curToken.Literal)
		return nil
	}
	lit.Value = value

	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError("could not parse %q as float", p.curToken.Literal)
		return nil
	}
	lit.Value = value

	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNil() ast.Expression {
	return &ast.Nil{Token: p.curToken}
}

// parseGroupedExpression allows a full sendable inside the parens, so a
// send can sit in operand position: (c report) + 1.
func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	exp = p.parseSendableFrom(exp)

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

// parseEmbeddedText splits the raw fenced content: the first line carries
// tag words, the remainder is the verbatim text.
func (p *Parser) parseEmbeddedText() ast.Expression {
	raw := p.curToken.Literal
	et := &ast.EmbeddedText{Token: p.curToken}

	idx := strings.IndexByte(raw, '\n')
	if idx < 0 {
		et.Text = raw
		return et
	}

	tagLine := strings.TrimSpace(raw[:idx])
	if tagLine != "" {
		et.Tags = strings.Fields(strings.ReplaceAll(tagLine, ",", " "))
	}
	et.Text = raw[idx+1:]

	return et
}

// spawn Name { overrides }
func (p *Parser) parseSpawnExpression() ast.Expression {
	expr := &ast.SpawnExpression{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expr.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		expr.Config = p.parseBlock()
	}

	return expr
}

// parseListLiteral parses `[el el, el]`: elements are argument-shaped
// expressions, commas optional.
func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}

	for {
		for p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
		if p.peekTokenIs(token.RBRACKET) {
			p.nextToken()
			return list
		}
		if p.peekTokenIs(token.EOF) {
			p.peekError(token.RBRACKET)
			return nil
		}
		p.nextToken()
		el := p.parseArgumentExpression()
		if el == nil {
			return nil
		}
		list.Elements = append(list.Elements, el)
	}
}

// parseBlockOrMapLiteral decides between `{key: value}` mappings and
// `{ statements }` block literals by looking at the first inner tokens.
func (p *Parser) parseBlockOrMapLiteral() ast.Expression {
	braceTok := p.curToken

	mapKey := p.peekTokenIs(token.IDENT) || p.peekTokenIs(token.STRING) ||
		p.peekTokenIs(token.INT) || p.peekTokenIs(token.FLOAT)
	if mapKey {
		// need the token after the candidate key; rely on the lexer
		// being one token ahead via a saved parser state is not
		// possible, so probe after advancing.
		p.nextToken()
		if p.peekTokenIs(token.COLON) {
			return p.parseMapLiteralFromKey(braceTok)
		}
		return p.parseBlockFromFirst(braceTok)
	}

	return p.parseBlock()
}

// parseMapLiteralFromKey continues a map literal whose first key is cur.
func (p *Parser) parseMapLiteralFromKey(braceTok token.Token) ast.Expression {
	ml := &ast.MapLiteral{Token: braceTok}

	for {
		key := p.parseMapKey()
		if key == nil {
			return nil
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseSendableExpression()
		if value == nil {
			return nil
		}
		ml.Keys = append(ml.Keys, key)
		ml.Values = append(ml.Values, value)

		for p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.NEWLINE) {
			p.nextToken()
		}
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			return ml
		}
		if p.peekTokenIs(token.EOF) {
			p.peekError(token.RBRACE)
			return nil
		}
		p.nextToken()
	}
}

// parseMapKey treats bare identifier keys as string keys.
func (p *Parser) parseMapKey() ast.Expression {
	switch p.curToken.Type {
	case token.IDENT:
		return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	case token.STRING:
		return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	case token.INT:
		return p.parseIntegerLiteral()
	case token.FLOAT:
		return p.parseFloatLiteral()
	default:
		p.addError("invalid map key %s", p.curToken.Type)
		return nil
	}
}

// parseBlockFromFirst continues a block literal whose first statement
// starts at cur (the map-vs-block probe already advanced past '{').
func (p *Parser) parseBlockFromFirst(braceTok token.Token) ast.Expression {
	block := &ast.Block{Token: braceTok}

	stmt := p.parseStatement()
	if len(p.errors) > 0 {
		return nil
	}
	if stmt != nil {
		block.Statements = append(block.Statements, stmt)
	}

	p.fillBlock(block)
	return block
}

// parseBlock parses `{ statements }` with cur on '{'; leaves cur on '}'.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken}
	p.fillBlock(block)
	return block
}

func (p *Parser) fillBlock(block *ast.Block) {
	for {
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			return
		}
		if p.peekTokenIs(token.EOF) {
			p.peekError(token.RBRACE)
			return
		}
		p.nextToken()
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			continue
		}
		stmt := p.parseStatement()
		if len(p.errors) > 0 {
			return
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
}

// parsePattern parses the terms between '[' and ']'; leaves cur on ']'.
func (p *Parser) parsePattern() *ast.Pattern {
	pattern := &ast.Pattern{Token: p.curToken}

	for {
		if p.peekTokenIs(token.RBRACKET) {
			p.nextToken()
			return pattern
		}
		if p.peekTokenIs(token.EOF) || p.peekTokenIs(token.NEWLINE) {
			p.peekError(token.RBRACKET)
			return nil
		}
		p.nextToken()

		term := p.parsePatternTerm()
		if term == nil {
			return nil
		}
		pattern.Terms = append(pattern.Terms, term)
	}
}

func (p *Parser) parsePatternTerm() ast.PatternTerm {
	switch p.curToken.Type {
	case token.IDENT:
		return &ast.WordTerm{Token: p.curToken, Value: p.curToken.Literal}
	case token.HOLE:
		return &ast.HoleTerm{Token: p.curToken, Name: p.curToken.Literal}
	case token.INT:
		if lit := p.parseIntegerLiteral(); lit != nil {
			return &ast.LiteralTerm{Token: p.curToken, Value: lit}
		}
		return nil
	case token.FLOAT:
		if lit := p.parseFloatLiteral(); lit != nil {
			return &ast.LiteralTerm{Token: p.curToken, Value: lit}
		}
		return nil
	case token.STRING:
		return &ast.LiteralTerm{Token: p.curToken, Value: p.parseStringLiteral()}
	case token.TRUE, token.FALSE:
		return &ast.LiteralTerm{Token: p.curToken, Value: p.parseBoolean()}
	case token.NIL:
		return &ast.LiteralTerm{Token: p.curToken, Value: p.parseNil()}
	case token.MINUS:
		tok := p.curToken
		p.nextToken()
		switch p.curToken.Type {
		case token.INT:
			lit := p.parseIntegerLiteral()
			if lit == nil {
				return nil
			}
			il := lit.(*ast.IntegerLiteral)
			il.Value = -il.Value
			return &ast.LiteralTerm{Token: tok, Value: il}
		case token.FLOAT:
			lit := p.parseFloatLiteral()
			if lit == nil {
				return nil
			}
			fl := lit.(*ast.FloatLiteral)
			fl.Value = -fl.Value
			return &ast.LiteralTerm{Token: tok, Value: fl}
		default:
			p.addError("expected number after '-' in pattern")
			return nil
		}
	case token.UNDERSCORE:
		return p.parseHoleVariant()
	default:
		p.addError("unexpected token %s in pattern", p.curToken.Type)
		return nil
	}
}

// parseHoleVariant handles `_`, `_(expr)` and `_{name}` with cur on '_'.
func (p *Parser) parseHoleVariant() ast.PatternTerm {
	underscore := p.curToken

	switch p.peekToken.Type {
	case token.LPAREN:
		p.nextToken() // cur = '('
		p.nextToken()
		return p.parsePredicateTerm(underscore)
	case token.LBRACE:
		p.nextToken() // cur = '{'
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		name := p.curToken.Literal
		if !p.expectPeek(token.RBRACE) {
			return nil
		}
		return &ast.BlockHoleTerm{Token: underscore, Name: name}
	default:
		return &ast.DiscardTerm{Token: underscore}
	}
}

// parsePredicateTerm parses the expression of `_(expr)` with cur on its
// first token. The subject, the name bound to the tested argument, is
// the leftmost identifier of the expression. The `_(x: Type)` form
// becomes a type assertion.
func (p *Parser) parsePredicateTerm(underscore token.Token) ast.PatternTerm {
	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
		subject := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		p.nextToken() // cur = ':'
		colonTok := p.curToken
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		assertion := &ast.TypeAssertion{Token: colonTok, Subject: subject, TypeName: p.curToken.Literal}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		return &ast.PredicateTerm{Token: underscore, Name: subject.Value, Expr: assertion}
	}

	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	subject := leftmostIdentifier(expr)
	if subject == nil {
		p.addError("predicate hole %q has no subject identifier", expr.String())
		return nil
	}

	return &ast.PredicateTerm{Token: underscore, Name: subject.Value, Expr: expr}
}

func leftmostIdentifier(expr ast.Expression) *ast.Identifier {
	switch expr := expr.(type) {
	case *ast.Identifier:
		return expr
	case *ast.InfixExpression:
		return leftmostIdentifier(expr.Left)
	case *ast.PrefixExpression:
		return leftmostIdentifier(expr.Right)
	}
	return nil
}
