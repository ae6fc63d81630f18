package evaluator

import (
	"fmt"
	"math"
	"strings"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/ast"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/log"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/runtime"
)

// Evaluator interprets parsed programs against a running agent system.
// It satisfies runtime.Evaluator, so instances call back into it to run
// handler bodies and predicate guards.
type Evaluator struct {
	sys *runtime.System
}

func New(sys *runtime.System) *Evaluator {
	ev := &Evaluator{sys: sys}
	sys.SetEvaluator(ev)
	return ev
}

func (ev *Evaluator) System() *runtime.System { return ev.sys }

// RunBlock evaluates the statements of a block in env, returning the
// value of the last one. An error halts the block.
func (ev *Evaluator) RunBlock(block *ast.Block, env *object.Environment) object.Object {
	return ev.evalStatements(block.Statements, env)
}

// EvalExpression evaluates a single expression in env.
func (ev *Evaluator) EvalExpression(expr ast.Expression, env *object.Environment) object.Object {
	return ev.Eval(expr, env)
}

func (ev *Evaluator) evalStatements(stmts []ast.Statement, env *object.Environment) object.Object {
	var result object.Object = object.NIL
	for _, stmt := range stmts {
		result = ev.Eval(stmt, env)
		if isError(result) {
			return result
		}
	}
	return result
}

func (ev *Evaluator) Eval(node ast.Node, env *object.Environment) object.Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return ev.evalStatements(node.Statements, env)
	case *ast.ExpressionStatement:
		return ev.Eval(node.Expression, env)
	case *ast.AssignStatement:
		return ev.evalAssign(node, env)
	case *ast.FieldStatement:
		return ev.evalField(node, env)
	case *ast.AgentDecl:
		ev.sys.Register(node)
		return object.NIL
	case *ast.HandlerStatement:
		// handlers are collected at spawn; one evaluated in running code
		// is inert
		return object.NIL
	case *ast.ExpandStatement:
		return ev.evalExpand(node, env)

	// Expressions
	case *ast.Identifier:
		return ev.evalIdentifier(node, env)
	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}
	case *ast.FloatLiteral:
		return &object.Float{Value: node.Value}
	case *ast.StringLiteral:
		return &object.String{Value: node.Value}
	case *ast.Boolean:
		return object.NativeBoolToBooleanObject(node.Value)
	case *ast.Nil:
		return object.NIL
	case *ast.EmbeddedText:
		return &object.Embedded{Tags: node.Tags, Text: node.Text}
	case *ast.Block:
		return &object.Block{Body: node, Env: env}
	case *ast.ListLiteral:
		return ev.evalListLiteral(node, env)
	case *ast.MapLiteral:
		return ev.evalMapLiteral(node, env)
	case *ast.PrefixExpression:
		return ev.evalPrefixExpression(node, env)
	case *ast.InfixExpression:
		return ev.evalInfixExpression(node, env)
	case *ast.TypeAssertion:
		return ev.evalTypeAssertion(node, env)
	case *ast.SendExpression:
		return ev.evalSend(node, nil, env, false)
	case *ast.PipeExpression:
		return ev.evalPipe(node, env, false)
	case *ast.SpawnExpression:
		return ev.evalSpawn(node, env)
	}

	return newError("unknown node %T", node)
}

// evalAssign implements assignment as a message send: the value of a send
// on the right-hand side is the responder's reply, so the assignment
// waits for it.
func (ev *Evaluator) evalAssign(node *ast.AssignStatement, env *object.Environment) object.Object {
	value := ev.evalValueOf(node.Value, env)
	if isError(value) {
		return value
	}
	if _, err := env.Assign(node.Name.Value, value); err != nil {
		return newError("%s", err.Error())
	}
	return value
}

// evalValueOf evaluates an expression whose result is needed: sends and
// pipelines become synchronous, everything else evaluates normally.
func (ev *Evaluator) evalValueOf(expr ast.Expression, env *object.Environment) object.Object {
	switch expr := expr.(type) {
	case *ast.SendExpression:
		return ev.evalSend(expr, nil, env, true)
	case *ast.PipeExpression:
		return ev.evalPipe(expr, env, true)
	default:
		return ev.Eval(expr, env)
	}
}

func (ev *Evaluator) evalField(node *ast.FieldStatement, env *object.Environment) object.Object {
	// A spawn override wins over the default, but still has to satisfy
	// the field's type annotation.
	if bound, ok := env.GetLocal(node.Name.Value); ok {
		if match, err := typeMatches(node.TypeName, bound); err != nil {
			return err
		} else if !match {
			return newError("field %s: %s is not a %s",
				node.Name.Value, bound.Inspect(), node.TypeName)
		}
		return bound
	}

	var value object.Object = object.NIL
	if node.Value != nil {
		value = ev.evalValueOf(node.Value, env)
		if isError(value) {
			return value
		}
		if ok, err := typeMatches(node.TypeName, value); err != nil {
			return err
		} else if !ok {
			return newError("field %s: %s is not a %s",
				node.Name.Value, value.Inspect(), node.TypeName)
		}
	}
	env.Define(node.Name.Value, value)
	return value
}

// evalExpand runs a captured block in its captured environment, so
// assignments inside it mutate the scope it closed over.
func (ev *Evaluator) evalExpand(node *ast.ExpandStatement, env *object.Environment) object.Object {
	value := ev.Eval(node.Value, env)
	if isError(value) {
		return value
	}
	block, ok := value.(*object.Block)
	if !ok {
		return newError("cannot expand %s, not a block", value.Type())
	}
	return ev.RunBlock(block.Body, block.Env)
}

func (ev *Evaluator) evalIdentifier(node *ast.Identifier, env *object.Environment) object.Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	return newError("identifier not found: %s", node.Value)
}

func (ev *Evaluator) evalListLiteral(node *ast.ListLiteral, env *object.Environment) object.Object {
	elements := make([]object.Object, 0, len(node.Elements))
	for _, el := range node.Elements {
		value := ev.Eval(el, env)
		if isError(value) {
			return value
		}
		elements = append(elements, value)
	}
	return &object.List{Elements: elements}
}

func (ev *Evaluator) evalMapLiteral(node *ast.MapLiteral, env *object.Environment) object.Object {
	result := object.NewMap()
	for i, keyExpr := range node.Keys {
		key := ev.Eval(keyExpr, env)
		if isError(key) {
			return key
		}
		hashable, ok := key.(object.Hashable)
		if !ok {
			return newError("unusable as map key: %s", key.Type())
		}
		value := ev.evalValueOf(node.Values[i], env)
		if isError(value) {
			return value
		}
		result.Set(hashable, value)
	}
	return result
}

func (ev *Evaluator) evalPrefixExpression(node *ast.PrefixExpression, env *object.Environment) object.Object {
	right := ev.evalValueOf(node.Right, env)
	if isError(right) {
		return right
	}

	switch node.Operator {
	case "!":
		return object.NativeBoolToBooleanObject(!object.IsTruthy(right))
	case "-":
		switch right := right.(type) {
		case *object.Integer:
			return &object.Integer{Value: -right.Value}
		case *object.Float:
			return &object.Float{Value: -right.Value}
		}
		return newError("unknown operator: -%s", right.Type())
	}
	return newError("unknown operator: %s%s", node.Operator, right.Type())
}

func (ev *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *object.Environment) object.Object {
	if node.Operator == "&&" || node.Operator == "||" {
		return ev.evalLogicalExpression(node, env)
	}

	left := ev.evalValueOf(node.Left, env)
	if isError(left) {
		return left
	}
	right := ev.evalValueOf(node.Right, env)
	if isError(right) {
		return right
	}

	switch {
	case node.Operator == "==":
		return object.NativeBoolToBooleanObject(object.Equals(left, right))
	case node.Operator == "!=":
		return object.NativeBoolToBooleanObject(!object.Equals(left, right))
	case isNumber(left) && isNumber(right):
		return evalNumberInfix(node.Operator, left, right)
	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ:
		return evalStringInfix(node.Operator, left.(*object.String), right.(*object.String))
	case left.Type() == object.LIST_OBJ && node.Operator == "+":
		if rl, ok := right.(*object.List); ok {
			ll := left.(*object.List)
			joined := make([]object.Object, 0, len(ll.Elements)+len(rl.Elements))
			joined = append(joined, ll.Elements...)
			joined = append(joined, rl.Elements...)
			return &object.List{Elements: joined}
		}
		return newError("type mismatch: %s + %s", left.Type(), right.Type())
	case left.Type() != right.Type():
		return newError("type mismatch: %s %s %s", left.Type(), node.Operator, right.Type())
	}
	return newError("unknown operator: %s %s %s", left.Type(), node.Operator, right.Type())
}

func (ev *Evaluator) evalLogicalExpression(node *ast.InfixExpression, env *object.Environment) object.Object {
	left := ev.evalValueOf(node.Left, env)
	if isError(left) {
		return left
	}
	if node.Operator == "&&" && !object.IsTruthy(left) {
		return object.FALSE
	}
	if node.Operator == "||" && object.IsTruthy(left) {
		return object.TRUE
	}
	right := ev.evalValueOf(node.Right, env)
	if isError(right) {
		return right
	}
	return object.NativeBoolToBooleanObject(object.IsTruthy(right))
}

func isNumber(obj object.Object) bool {
	return obj.Type() == object.INTEGER_OBJ || obj.Type() == object.FLOAT_OBJ
}

func evalNumberInfix(operator string, left, right object.Object) object.Object {
	li, lInt := left.(*object.Integer)
	ri, rInt := right.(*object.Integer)

	if lInt && rInt {
		switch operator {
		case "+":
			return &object.Integer{Value: li.Value + ri.Value}
		case "-":
			return &object.Integer{Value: li.Value - ri.Value}
		case "*":
			return &object.Integer{Value: li.Value * ri.Value}
		case "/":
			if ri.Value == 0 {
				return newError("division by zero")
			}
			return &object.Integer{Value: li.Value / ri.Value}
		case "%":
			if ri.Value == 0 {
				return newError("division by zero")
			}
			return &object.Integer{Value: li.Value % ri.Value}
		case "%%":
			if ri.Value == 0 {
				return newError("division by zero")
			}
			return object.NativeBoolToBooleanObject(li.Value%ri.Value == 0)
		case "<":
			return object.NativeBoolToBooleanObject(li.Value < ri.Value)
		case "<=":
			return object.NativeBoolToBooleanObject(li.Value <= ri.Value)
		case ">":
			return object.NativeBoolToBooleanObject(li.Value > ri.Value)
		case ">=":
			return object.NativeBoolToBooleanObject(li.Value >= ri.Value)
		}
		return newError("unknown operator: INTEGER %s INTEGER", operator)
	}

	lf := toFloat(left)
	rf := toFloat(right)
	switch operator {
	case "+":
		return &object.Float{Value: lf + rf}
	case "-":
		return &object.Float{Value: lf - rf}
	case "*":
		return &object.Float{Value: lf * rf}
	case "/":
		if rf == 0 {
			return newError("division by zero")
		}
		return &object.Float{Value: lf / rf}
	case "%":
		if rf == 0 {
			return newError("division by zero")
		}
		return &object.Float{Value: math.Mod(lf, rf)}
	case "<":
		return object.NativeBoolToBooleanObject(lf < rf)
	case "<=":
		return object.NativeBoolToBooleanObject(lf <= rf)
	case ">":
		return object.NativeBoolToBooleanObject(lf > rf)
	case ">=":
		return object.NativeBoolToBooleanObject(lf >= rf)
	}
	return newError("unknown operator: FLOAT %s FLOAT", operator)
}

func toFloat(obj object.Object) float64 {
	switch obj := obj.(type) {
	case *object.Integer:
		return float64(obj.Value)
	case *object.Float:
		return obj.Value
	}
	return 0
}

func evalStringInfix(operator string, left, right *object.String) object.Object {
	switch operator {
	case "+":
		return &object.String{Value: left.Value + right.Value}
	case "<":
		return object.NativeBoolToBooleanObject(left.Value < right.Value)
	case ">":
		return object.NativeBoolToBooleanObject(left.Value > right.Value)
	}
	return newError("unknown operator: STRING %s STRING", operator)
}

// evalTypeAssertion answers `subject: TypeName`; unknown type names are
// errors so a mistyped guard reads as a non-match, not a silent false.
func (ev *Evaluator) evalTypeAssertion(node *ast.TypeAssertion, env *object.Environment) object.Object {
	value := ev.Eval(node.Subject, env)
	if isError(value) {
		return value
	}
	ok, err := typeMatches(node.TypeName, value)
	if err != nil {
		return err
	}
	return object.NativeBoolToBooleanObject(ok)
}

func typeMatches(typeName string, value object.Object) (bool, *object.Error) {
	switch typeName {
	case "Number":
		return isNumber(value), nil
	case "Int", "Integer":
		return value.Type() == object.INTEGER_OBJ, nil
	case "Float":
		return value.Type() == object.FLOAT_OBJ, nil
	case "String":
		return value.Type() == object.STRING_OBJ, nil
	case "Bool", "Boolean":
		return value.Type() == object.BOOLEAN_OBJ, nil
	case "List":
		return value.Type() == object.LIST_OBJ, nil
	case "Map", "Dict":
		return value.Type() == object.MAP_OBJ, nil
	case "Block":
		return value.Type() == object.BLOCK_OBJ, nil
	case "Agent":
		return value.Type() == object.AGENT_REF_OBJ, nil
	case "Word":
		return value.Type() == object.WORD_OBJ, nil
	case "Text", "Embedded":
		return value.Type() == object.EMBEDDED_OBJ, nil
	case "Nil":
		return value.Type() == object.NIL_OBJ, nil
	case "Any":
		return true, nil
	}
	return false, newError("unknown type name: %s", typeName)
}

// evalSend delivers a message. The first term names the target when it
// resolves to an agent reference; otherwise every term, first included,
// goes to the sending agent itself. Unbound identifiers in send position
// evaluate to words, which is how selectors are written.
func (ev *Evaluator) evalSend(node *ast.SendExpression, extra object.Object, env *object.Environment, sync bool) object.Object {
	terms := make([]object.Object, 0, len(node.Terms)+1)
	for _, expr := range node.Terms {
		value := ev.evalTerm(expr, env)
		if isError(value) {
			return value
		}
		terms = append(terms, value)
	}
	if extra != nil {
		terms = append(terms, extra)
	}

	var target *object.AgentRef
	payload := terms
	if ref, ok := terms[0].(*object.AgentRef); ok {
		target = ref
		payload = terms[1:]
	} else {
		selfVal, ok := env.Get("self")
		if !ok {
			return newError("no agent to receive %s", strings.TrimSpace(node.String()))
		}
		target, ok = selfVal.(*object.AgentRef)
		if !ok {
			return newError("self is not an agent reference")
		}
	}

	msg := object.Message{Terms: payload}

	if !sync {
		if err := target.Queue.Post(msg); err != nil {
			log.Warn("EVL: send to %s dropped: %v", target.Name, err)
		}
		return object.NIL
	}

	replyRef, box := runtime.NewReply(target.Name)
	msg.ReplyTo = replyRef
	if err := target.Queue.Post(msg); err != nil {
		return newError("send to %s failed: %s", target.Name, err.Error())
	}
	value, err := box.Wait(runtime.ReplyTimeout)
	if err != nil {
		return newError("send to %s: %s", target.Name, err.Error())
	}
	return value
}

// evalTerm resolves one send term. A free identifier is a word, the
// literal currency of selectors and symbolic arguments.
func (ev *Evaluator) evalTerm(expr ast.Expression, env *object.Environment) object.Object {
	if ident, ok := expr.(*ast.Identifier); ok {
		if val, ok := env.Get(ident.Value); ok {
			return val
		}
		return &object.Word{Value: ident.Value}
	}
	return ev.Eval(expr, env)
}

// evalPipe threads the left-hand result in as the final argument of the
// right-hand send. The left side always runs synchronously; whether the
// right side does depends on whether the pipeline's value is needed.
func (ev *Evaluator) evalPipe(node *ast.PipeExpression, env *object.Environment, sync bool) object.Object {
	left := ev.evalValueOf(node.Left, env)
	if isError(left) {
		return left
	}
	return ev.evalSend(node.Right, left, env, sync)
}

// evalSpawn creates an instance of a registered definition. The config
// block runs in a private child scope; the names it defines there become
// the spawn overrides.
func (ev *Evaluator) evalSpawn(node *ast.SpawnExpression, env *object.Environment) object.Object {
	overrides := make(map[string]object.Object)

	if node.Config != nil {
		cfgEnv := object.NewEnclosedEnvironment(env)
		for _, stmt := range node.Config.Statements {
			assign, ok := stmt.(*ast.AssignStatement)
			if !ok {
				return newError("spawn config for %s: only assignments allowed, got %s",
					node.Name.Value, stmt.String())
			}
			value := ev.evalValueOf(assign.Value, cfgEnv)
			if isError(value) {
				return value
			}
			cfgEnv.Define(assign.Name.Value, value)
			overrides[assign.Name.Value] = value
		}
	}

	ref, err := ev.sys.Spawn(node.Name.Value, overrides)
	if err != nil {
		return newError("spawn %s: %s", node.Name.Value, err.Error())
	}
	return ref
}

func newError(format string, args ...interface{}) *object.Error {
	return &object.Error{Message: fmt.Sprintf(format, args...)}
}

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ERROR_OBJ
	}
	return false
}
