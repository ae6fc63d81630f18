package parser

import (
	"fmt"
	"testing"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/ast"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input), input)
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}
	t.Errorf("parser has %d errors", len(errors))
	for _, msg := range errors {
		t.Errorf("parser error: %q", msg)
	}
	t.FailNow()
}

func TestAssignStatements(t *testing.T) {
	tests := []struct {
		input              string
		expectedIdentifier string
		expectedValue      interface{}
	}{
		{"x = 5", "x", 5},
		{"y = true", "y", true},
		{"foo-bar = y", "foo-bar", "y"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)

		if len(program.Statements) != 1 {
			t.Fatalf("program.Statements does not contain 1 statement. got=%d",
				len(program.Statements))
		}
		stmt, ok := program.Statements[0].(*ast.AssignStatement)
		if !ok {
			t.Fatalf("stmt not *ast.AssignStatement. got=%T", program.Statements[0])
		}
		if stmt.Name.Value != tt.expectedIdentifier {
			t.Errorf("stmt.Name.Value not %q. got=%q", tt.expectedIdentifier, stmt.Name.Value)
		}
		if !testLiteralExpression(t, stmt.Value, tt.expectedValue) {
			return
		}
	}
}

func TestFieldStatements(t *testing.T) {
	input := `count: Number = 0
name: String`

	program := parseProgram(t, input)

	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements. got=%d", len(program.Statements))
	}

	first, ok := program.Statements[0].(*ast.FieldStatement)
	if !ok {
		t.Fatalf("stmt not *ast.FieldStatement. got=%T", program.Statements[0])
	}
	if first.Name.Value != "count" {
		t.Errorf("field name not %q. got=%q", "count", first.Name.Value)
	}
	if first.TypeName != "Number" {
		t.Errorf("field type not %q. got=%q", "Number", first.TypeName)
	}
	if !testIntegerLiteral(t, first.Value, 0) {
		return
	}

	second, ok := program.Statements[1].(*ast.FieldStatement)
	if !ok {
		t.Fatalf("stmt not *ast.FieldStatement. got=%T", program.Statements[1])
	}
	if second.Value != nil {
		t.Errorf("expected field without default. got=%s", second.Value.String())
	}
}

func TestAgentDecl(t *testing.T) {
	input := `agent Counter {
	count: Number = 0

	[increase _amount] {
		count = count + amount
	}
}`

	program := parseProgram(t, input)

	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement. got=%d", len(program.Statements))
	}
	decl, ok := program.Statements[0].(*ast.AgentDecl)
	if !ok {
		t.Fatalf("stmt not *ast.AgentDecl. got=%T", program.Statements[0])
	}
	if decl.Name.Value != "Counter" {
		t.Errorf("agent name not %q. got=%q", "Counter", decl.Name.Value)
	}
	if len(decl.Body.Statements) != 2 {
		t.Fatalf("agent body expected 2 statements. got=%d", len(decl.Body.Statements))
	}
	if _, ok := decl.Body.Statements[0].(*ast.FieldStatement); !ok {
		t.Errorf("first body stmt not *ast.FieldStatement. got=%T", decl.Body.Statements[0])
	}
	handler, ok := decl.Body.Statements[1].(*ast.HandlerStatement)
	if !ok {
		t.Fatalf("second body stmt not *ast.HandlerStatement. got=%T", decl.Body.Statements[1])
	}
	if handler.Pattern.Arity() != 2 {
		t.Errorf("handler arity not 2. got=%d", handler.Pattern.Arity())
	}
}

func TestPatternTerms(t *testing.T) {
	input := `agent A {
	[ping] { x = 1 }
	[set _value] { x = 1 }
	[take _(n > 0)] { x = 1 }
	[typed _(v: Number)] { x = 1 }
	[run _{body}] { x = 1 }
	[ignore _] { x = 1 }
	[level 3 "high" true] { x = 1 }
	[offset -2] { x = 1 }
}`

	program := parseProgram(t, input)
	decl := program.Statements[0].(*ast.AgentDecl)

	handlers := make([]*ast.HandlerStatement, 0, len(decl.Body.Statements))
	for _, stmt := range decl.Body.Statements {
		h, ok := stmt.(*ast.HandlerStatement)
		if !ok {
			t.Fatalf("body stmt not handler. got=%T", stmt)
		}
		handlers = append(handlers, h)
	}
	if len(handlers) != 8 {
		t.Fatalf("expected 8 handlers. got=%d", len(handlers))
	}

	word, ok := handlers[0].Pattern.Terms[0].(*ast.WordTerm)
	if !ok || word.Value != "ping" {
		t.Errorf("expected word term ping. got=%v", handlers[0].Pattern.Terms[0])
	}

	hole, ok := handlers[1].Pattern.Terms[1].(*ast.HoleTerm)
	if !ok || hole.Name != "value" {
		t.Errorf("expected hole term value. got=%v", handlers[1].Pattern.Terms[1])
	}

	pred, ok := handlers[2].Pattern.Terms[1].(*ast.PredicateTerm)
	if !ok {
		t.Fatalf("expected predicate term. got=%T", handlers[2].Pattern.Terms[1])
	}
	if pred.Name != "n" {
		t.Errorf("predicate subject not %q. got=%q", "n", pred.Name)
	}
	if pred.Expr.String() != "(n > 0)" {
		t.Errorf("predicate expr not %q. got=%q", "(n > 0)", pred.Expr.String())
	}

	typed, ok := handlers[3].Pattern.Terms[1].(*ast.PredicateTerm)
	if !ok {
		t.Fatalf("expected predicate term. got=%T", handlers[3].Pattern.Terms[1])
	}
	if _, ok := typed.Expr.(*ast.TypeAssertion); !ok {
		t.Errorf("expected type assertion expr. got=%T", typed.Expr)
	}

	blockHole, ok := handlers[4].Pattern.Terms[1].(*ast.BlockHoleTerm)
	if !ok || blockHole.Name != "body" {
		t.Errorf("expected block hole body. got=%v", handlers[4].Pattern.Terms[1])
	}

	if _, ok := handlers[5].Pattern.Terms[1].(*ast.DiscardTerm); !ok {
		t.Errorf("expected discard term. got=%T", handlers[5].Pattern.Terms[1])
	}

	if len(handlers[6].Pattern.Terms) != 4 {
		t.Fatalf("literal pattern arity not 4. got=%d", len(handlers[6].Pattern.Terms))
	}
	for i := 1; i < 4; i++ {
		if _, ok := handlers[6].Pattern.Terms[i].(*ast.LiteralTerm); !ok {
			t.Errorf("term %d not literal. got=%T", i, handlers[6].Pattern.Terms[i])
		}
	}

	neg, ok := handlers[7].Pattern.Terms[1].(*ast.LiteralTerm)
	if !ok {
		t.Fatalf("expected literal term. got=%T", handlers[7].Pattern.Terms[1])
	}
	il, ok := neg.Value.(*ast.IntegerLiteral)
	if !ok || il.Value != -2 {
		t.Errorf("expected -2 literal. got=%v", neg.Value)
	}
}

func TestSendExpressions(t *testing.T) {
	tests := []struct {
		input string
		terms []string
	}{
		{"io println", []string{"io", "println"}},
		{`io println "hi" 42`, []string{"io", "println", `"hi"`, "42"}},
		{"counter increase (1 + 2)", []string{"counter", "increase", "(1 + 2)"}},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)

		stmt := program.Statements[0].(*ast.ExpressionStatement)
		send, ok := stmt.Expression.(*ast.SendExpression)
		if !ok {
			t.Fatalf("expression not *ast.SendExpression. got=%T", stmt.Expression)
		}
		if len(send.Terms) != len(tt.terms) {
			t.Fatalf("send has %d terms, want %d", len(send.Terms), len(tt.terms))
		}
		for i, want := range tt.terms {
			if send.Terms[i].String() != want {
				t.Errorf("term %d: got=%q want=%q", i, send.Terms[i].String(), want)
			}
		}
	}
}

func TestAssignFromSend(t *testing.T) {
	input := "result = calc sum 1 2"

	program := parseProgram(t, input)
	stmt := program.Statements[0].(*ast.AssignStatement)

	send, ok := stmt.Value.(*ast.SendExpression)
	if !ok {
		t.Fatalf("assigned value not *ast.SendExpression. got=%T", stmt.Value)
	}
	if len(send.Terms) != 4 {
		t.Fatalf("send has %d terms, want 4", len(send.Terms))
	}
}

func TestPipeExpression(t *testing.T) {
	input := "calc sum 1 2 /> io println"

	program := parseProgram(t, input)
	stmt := program.Statements[0].(*ast.ExpressionStatement)

	pipe, ok := stmt.Expression.(*ast.PipeExpression)
	if !ok {
		t.Fatalf("expression not *ast.PipeExpression. got=%T", stmt.Expression)
	}
	left, ok := pipe.Left.(*ast.SendExpression)
	if !ok || len(left.Terms) != 4 {
		t.Fatalf("pipe left not a 4-term send. got=%T", pipe.Left)
	}
	if len(pipe.Right.Terms) != 2 {
		t.Errorf("pipe right has %d terms, want 2", len(pipe.Right.Terms))
	}
}

func TestSpawnExpression(t *testing.T) {
	input := `c = spawn Counter {
	count = 10
}`

	program := parseProgram(t, input)
	stmt := program.Statements[0].(*ast.AssignStatement)

	sp, ok := stmt.Value.(*ast.SpawnExpression)
	if !ok {
		t.Fatalf("assigned value not *ast.SpawnExpression. got=%T", stmt.Value)
	}
	if sp.Name.Value != "Counter" {
		t.Errorf("spawn name not %q. got=%q", "Counter", sp.Name.Value)
	}
	if sp.Config == nil || len(sp.Config.Statements) != 1 {
		t.Fatalf("spawn config missing override")
	}
}

func TestSpawnWithoutConfig(t *testing.T) {
	program := parseProgram(t, "c = spawn Counter")
	stmt := program.Statements[0].(*ast.AssignStatement)
	sp := stmt.Value.(*ast.SpawnExpression)
	if sp.Config != nil {
		t.Errorf("expected nil config. got=%s", sp.Config.String())
	}
}

func TestExpandStatement(t *testing.T) {
	program := parseProgram(t, "*body")
	stmt, ok := program.Statements[0].(*ast.ExpandStatement)
	if !ok {
		t.Fatalf("stmt not *ast.ExpandStatement. got=%T", program.Statements[0])
	}
	ident, ok := stmt.Value.(*ast.Identifier)
	if !ok || ident.Value != "body" {
		t.Errorf("expand target not body. got=%v", stmt.Value)
	}
}

func TestBlockLiteral(t *testing.T) {
	input := `b = {
	io println "inside"
}`

	program := parseProgram(t, input)
	stmt := program.Statements[0].(*ast.AssignStatement)

	block, ok := stmt.Value.(*ast.Block)
	if !ok {
		t.Fatalf("assigned value not *ast.Block. got=%T", stmt.Value)
	}
	if len(block.Statements) != 1 {
		t.Fatalf("block has %d statements, want 1", len(block.Statements))
	}
}

func TestEmptyBlockLiteral(t *testing.T) {
	program := parseProgram(t, "b = {}")
	stmt := program.Statements[0].(*ast.AssignStatement)
	block, ok := stmt.Value.(*ast.Block)
	if !ok {
		t.Fatalf("assigned value not *ast.Block. got=%T", stmt.Value)
	}
	if len(block.Statements) != 0 {
		t.Errorf("expected empty block. got=%d statements", len(block.Statements))
	}
}

func TestMapLiteral(t *testing.T) {
	input := `m = {name: "ada", "age": 36, 7: true}`

	program := parseProgram(t, input)
	stmt := program.Statements[0].(*ast.AssignStatement)

	ml, ok := stmt.Value.(*ast.MapLiteral)
	if !ok {
		t.Fatalf("assigned value not *ast.MapLiteral. got=%T", stmt.Value)
	}
	if len(ml.Keys) != 3 {
		t.Fatalf("map has %d keys, want 3", len(ml.Keys))
	}

	first, ok := ml.Keys[0].(*ast.StringLiteral)
	if !ok || first.Value != "name" {
		t.Errorf("bare key not lowered to string. got=%v", ml.Keys[0])
	}
	third, ok := ml.Keys[2].(*ast.IntegerLiteral)
	if !ok || third.Value != 7 {
		t.Errorf("expected integer key 7. got=%v", ml.Keys[2])
	}
}

func TestListLiteral(t *testing.T) {
	input := "xs = [1 2.5 \"three\" name]"

	program := parseProgram(t, input)
	stmt := program.Statements[0].(*ast.AssignStatement)

	list, ok := stmt.Value.(*ast.ListLiteral)
	if !ok {
		t.Fatalf("assigned value not *ast.ListLiteral. got=%T", stmt.Value)
	}
	if len(list.Elements) != 4 {
		t.Fatalf("list has %d elements, want 4", len(list.Elements))
	}
}

func TestBracketStatementIsListWhenNoBody(t *testing.T) {
	program := parseProgram(t, "[1 2 3]")
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("stmt not expression statement. got=%T", program.Statements[0])
	}
	list, ok := stmt.Expression.(*ast.ListLiteral)
	if !ok {
		t.Fatalf("expression not *ast.ListLiteral. got=%T", stmt.Expression)
	}
	if len(list.Elements) != 3 {
		t.Errorf("list has %d elements, want 3", len(list.Elements))
	}
}

func TestEmbeddedTextExpression(t *testing.T) {
	input := "doc = ```html\n<p>hi</p>\n```"

	program := parseProgram(t, input)
	stmt := program.Statements[0].(*ast.AssignStatement)

	et, ok := stmt.Value.(*ast.EmbeddedText)
	if !ok {
		t.Fatalf("assigned value not *ast.EmbeddedText. got=%T", stmt.Value)
	}
	if len(et.Tags) != 1 || et.Tags[0] != "html" {
		t.Errorf("tags not [html]. got=%v", et.Tags)
	}
	if et.Text != "<p>hi</p>\n" {
		t.Errorf("text wrong. got=%q", et.Text)
	}
}

func TestOperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x = 1 + 2 * 3", "(1 + (2 * 3))"},
		{"x = (1 + 2) * 3", "((1 + 2) * 3)"},
		{"x = a < b == c > d", "((a < b) == (c > d))"},
		{"x = -a * b", "((-a) * b)"},
		{"x = !a && b || c", "(((!a) && b) || c)"},
		{"x = a %% 2", "(a %% 2)"},
		{"x = 10 % 3 + 1", "((10 % 3) + 1)"},
		{"x = (c report) + 1", "(c report + 1)"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		stmt := program.Statements[0].(*ast.AssignStatement)
		actual := stmt.Value.String()
		if actual != tt.expected {
			t.Errorf("input %q: expected=%q, got=%q", tt.input, tt.expected, actual)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
	}{
		{"x ="},
		{"agent {"},
		{"[set _value"},
		{"m = {a: }"},
		{"x = (1 + 2"},
	}

	for _, tt := range tests {
		p := New(lexer.New(tt.input), tt.input)
		p.ParseProgram()
		if len(p.Errors()) == 0 {
			t.Errorf("input %q: expected parse error, got none", tt.input)
		}
		if p.FirstError() == nil {
			t.Errorf("input %q: FirstError is nil", tt.input)
		}
	}
}

func TestErrorCarriesLineAndColumn(t *testing.T) {
	input := "x = 1\ny = )"
	p := New(lexer.New(input), input)
	p.ParseProgram()

	err := p.FirstError()
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Line != 2 {
		t.Errorf("error line not 2. got=%d", err.Line)
	}
	if err.Column != 5 {
		t.Errorf("error column not 5. got=%d", err.Column)
	}
}

func testLiteralExpression(t *testing.T, exp ast.Expression, expected interface{}) bool {
	switch v := expected.(type) {
	case int:
		return testIntegerLiteral(t, exp, int64(v))
	case int64:
		return testIntegerLiteral(t, exp, v)
	case string:
		return testIdentifier(t, exp, v)
	case bool:
		return testBooleanLiteral(t, exp, v)
	}
	t.Errorf("type of exp not handled. got=%T", exp)
	return false
}

func testIntegerLiteral(t *testing.T, il ast.Expression, value int64) bool {
	integ, ok := il.(*ast.IntegerLiteral)
	if !ok {
		t.Errorf("il not *ast.IntegerLiteral. got=%T", il)
		return false
	}
	if integ.Value != value {
		t.Errorf("integ.Value not %d. got=%d", value, integ.Value)
		return false
	}
	if integ.TokenLiteral() != fmt.Sprintf("%d", value) {
		t.Errorf("integ.TokenLiteral not %d. got=%s", value, integ.TokenLiteral())
		return false
	}
	return true
}

func testIdentifier(t *testing.T, exp ast.Expression, value string) bool {
	ident, ok := exp.(*ast.Identifier)
	if !ok {
		t.Errorf("exp not *ast.Identifier. got=%T", exp)
		return false
	}
	if ident.Value != value {
		t.Errorf("ident.Value not %s. got=%s", value, ident.Value)
		return false
	}
	return true
}

func testBooleanLiteral(t *testing.T, exp ast.Expression, value bool) bool {
	bo, ok := exp.(*ast.Boolean)
	if !ok {
		t.Errorf("exp not *ast.Boolean. got=%T", exp)
		return false
	}
	if bo.Value != value {
		t.Errorf("bo.Value not %t. got=%t", value, bo.Value)
		return false
	}
	return true
}
