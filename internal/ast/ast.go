package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/token"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}

	return out.String()
}

// AssignStatement is `name = expr`. Assignment is a binding message: a name
// unbound in any enclosing scope binds into the nearest instance scope.
type AssignStatement struct {
	Token token.Token // the '=' token
	Name  *Identifier
	Value Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) String() string {
	var out bytes.Buffer
	out.WriteString(as.Name.String())
	out.WriteString(" = ")
	if as.Value != nil {
		out.WriteString(as.Value.String())
	}
	return out.String()
}

// FieldStatement is `name: Type = expr`, a typed default binding in an
// agent definition body.
type FieldStatement struct {
	Token    token.Token // the ':' token
	Name     *Identifier
	TypeName string
	Value    Expression // optional
}

func (fs *FieldStatement) statementNode()       {}
func (fs *FieldStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FieldStatement) String() string {
	var out bytes.Buffer
	out.WriteString(fs.Name.String())
	out.WriteString(": ")
	out.WriteString(fs.TypeName)
	if fs.Value != nil {
		out.WriteString(" = ")
		out.WriteString(fs.Value.String())
	}
	return out.String()
}

// HandlerStatement is `[pattern] { body }`.
type HandlerStatement struct {
	Token   token.Token // the '[' token
	Pattern *Pattern
	Body    *Block
}

func (hs *HandlerStatement) statementNode()       {}
func (hs *HandlerStatement) TokenLiteral() string { return hs.Token.Literal }
func (hs *HandlerStatement) String() string {
	var out bytes.Buffer
	out.WriteString("[")
	out.WriteString(hs.Pattern.String())
	out.WriteString("] ")
	out.WriteString(hs.Body.String())
	return out.String()
}

// AgentDecl is `agent Name { fields and handlers }`. Purely declarative;
// the body runs only when an instance is spawned.
type AgentDecl struct {
	Token token.Token // the 'agent' token
	Name  *Identifier
	Body  *Block
}

func (ad *AgentDecl) statementNode()       {}
func (ad *AgentDecl) TokenLiteral() string { return ad.Token.Literal }
func (ad *AgentDecl) String() string {
	var out bytes.Buffer
	out.WriteString("agent ")
	out.WriteString(ad.Name.String())
	out.WriteString(" ")
	out.WriteString(ad.Body.String())
	return out.String()
}

// ExpandStatement is `*expr`: runs a captured block value.
type ExpandStatement struct {
	Token token.Token // the '*' token
	Value Expression
}

func (es *ExpandStatement) statementNode()       {}
func (es *ExpandStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpandStatement) String() string {
	return "*" + es.Value.String()
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// Block is a sequence of statements. As an expression it is a block
// literal: evaluating it captures the current environment.
type Block struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (b *Block) statementNode()       {}
func (b *Block) expressionNode()      {}
func (b *Block) TokenLiteral() string { return b.Token.Literal }
func (b *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i, s := range b.Statements {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	out.WriteString("}")
	return out.String()
}

// Expressions

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

type Boolean struct {
	Token token.Token
	Value bool
}

func (b *Boolean) expressionNode()      {}
func (b *Boolean) TokenLiteral() string { return b.Token.Literal }
func (b *Boolean) String() string       { return b.Token.Literal }

type Nil struct {
	Token token.Token
}

func (n *Nil) expressionNode()      {}
func (n *Nil) TokenLiteral() string { return n.Token.Literal }
func (n *Nil) String() string       { return n.Token.Literal }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

// EmbeddedText is a fenced verbatim segment ```tags\n text ``` captured as
// an opaque string with its tag words.
type EmbeddedText struct {
	Token token.Token
	Tags  []string
	Text  string
}

func (et *EmbeddedText) expressionNode()      {}
func (et *EmbeddedText) TokenLiteral() string { return et.Token.Literal }
func (et *EmbeddedText) String() string {
	var out bytes.Buffer
	out.WriteString("```")
	out.WriteString(strings.Join(et.Tags, " "))
	out.WriteString("\n")
	out.WriteString(et.Text)
	out.WriteString("```")
	return out.String()
}

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. !
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(pe.Operator)
	out.WriteString(pe.Right.String())
	out.WriteString(")")
	return out.String()
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")
	return out.String()
}

type ListLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) String() string {
	var out bytes.Buffer
	elements := []string{}
	for _, el := range ll.Elements {
		elements = append(elements, el.String())
	}
	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")
	return out.String()
}

// MapLiteral keeps declaration order; mappings are ordered.
type MapLiteral struct {
	Token  token.Token // the '{' token
	Keys   []Expression
	Values []Expression
}

func (ml *MapLiteral) expressionNode()      {}
func (ml *MapLiteral) TokenLiteral() string { return ml.Token.Literal }
func (ml *MapLiteral) String() string {
	var out bytes.Buffer
	pairs := []string{}
	for i, key := range ml.Keys {
		pairs = append(pairs, key.String()+": "+ml.Values[i].String())
	}
	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")
	return out.String()
}

// SendExpression is `term term term ...`: the first term evaluating to an
// agent reference is the target, the rest are selector and arguments. A
// send whose first term is not a reference is a self-send.
type SendExpression struct {
	Token token.Token // the first term's token
	Terms []Expression
}

func (se *SendExpression) expressionNode()      {}
func (se *SendExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SendExpression) String() string {
	terms := []string{}
	for _, t := range se.Terms {
		terms = append(terms, t.String())
	}
	return strings.Join(terms, " ")
}

// SpawnExpression is `spawn Name { overrides }`. The override block is
// evaluated in the spawning agent's environment and yields the
// configuration mapping applied over definition defaults.
type SpawnExpression struct {
	Token  token.Token // the 'spawn' token
	Name   *Identifier
	Config *Block // may be nil
}

func (se *SpawnExpression) expressionNode()      {}
func (se *SpawnExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SpawnExpression) String() string {
	var out bytes.Buffer
	out.WriteString("spawn ")
	out.WriteString(se.Name.String())
	if se.Config != nil {
		out.WriteString(" ")
		out.WriteString(se.Config.String())
	}
	return out.String()
}

// PipeExpression is `left /> send`: the left result is appended as the
// final argument of the right-hand send.
type PipeExpression struct {
	Token token.Token // the '/>' token
	Left  Expression
	Right *SendExpression
}

func (pe *PipeExpression) expressionNode()      {}
func (pe *PipeExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PipeExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(pe.Left.String())
	out.WriteString(" /> ")
	out.WriteString(pe.Right.String())
	out.WriteString(")")
	return out.String()
}

// TypeAssertion is the predicate-hole form `_(x: Number)`: true when the
// subject's runtime type matches TypeName.
type TypeAssertion struct {
	Token    token.Token // the ':' token
	Subject  *Identifier
	TypeName string
}

func (ta *TypeAssertion) expressionNode()      {}
func (ta *TypeAssertion) TokenLiteral() string { return ta.Token.Literal }
func (ta *TypeAssertion) String() string {
	return ta.Subject.String() + ": " + ta.TypeName
}

// Pattern terms

// Pattern is an ordered sequence of terms matched against a message of
// exactly the same arity.
type Pattern struct {
	Token token.Token
	Terms []PatternTerm
}

func (p *Pattern) TokenLiteral() string { return p.Token.Literal }
func (p *Pattern) String() string {
	terms := []string{}
	for _, t := range p.Terms {
		terms = append(terms, t.String())
	}
	return strings.Join(terms, " ")
}

// Arity returns the number of terms the pattern expects.
func (p *Pattern) Arity() int { return len(p.Terms) }

type PatternTerm interface {
	Node
	patternTerm()
}

// WordTerm matches a selector word exactly.
type WordTerm struct {
	Token token.Token
	Value string
}

func (wt *WordTerm) patternTerm()         {}
func (wt *WordTerm) TokenLiteral() string { return wt.Token.Literal }
func (wt *WordTerm) String() string       { return wt.Value }

// LiteralTerm matches a literal value exactly.
type LiteralTerm struct {
	Token token.Token
	Value Expression
}

func (lt *LiteralTerm) patternTerm()         {}
func (lt *LiteralTerm) TokenLiteral() string { return lt.Token.Literal }
func (lt *LiteralTerm) String() string       { return lt.Value.String() }

// HoleTerm `_name` binds the corresponding argument; always matches.
type HoleTerm struct {
	Token token.Token
	Name  string
}

func (ht *HoleTerm) patternTerm()         {}
func (ht *HoleTerm) TokenLiteral() string { return ht.Token.Literal }
func (ht *HoleTerm) String() string       { return "_" + ht.Name }

// PredicateTerm `_(expr)` binds the subject name to the argument and then
// evaluates expr; the term matches only if the result is truthy.
type PredicateTerm struct {
	Token token.Token
	Name  string // the subject: leftmost identifier of Expr
	Expr  Expression
}

func (pt *PredicateTerm) patternTerm()         {}
func (pt *PredicateTerm) TokenLiteral() string { return pt.Token.Literal }
func (pt *PredicateTerm) String() string       { return "_(" + pt.Expr.String() + ")" }

// BlockHoleTerm `_{name}` matches only block values and binds one.
type BlockHoleTerm struct {
	Token token.Token
	Name  string
}

func (bt *BlockHoleTerm) patternTerm()         {}
func (bt *BlockHoleTerm) TokenLiteral() string { return bt.Token.Literal }
func (bt *BlockHoleTerm) String() string       { return "_{" + bt.Name + "}" }

// DiscardTerm `_` matches any single argument without binding.
type DiscardTerm struct {
	Token token.Token
}

func (dt *DiscardTerm) patternTerm()         {}
func (dt *DiscardTerm) TokenLiteral() string { return dt.Token.Literal }
func (dt *DiscardTerm) String() string       { return "_" }
