package runtime

import (
	"github.com/b33j0r/komrad-lang-golden-boy/internal/ast"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

// match tests a pattern against message terms. Arity must be exact; terms
// are compared left to right and the bindings of every hole are returned
// on success. A predicate that errors is a non-match, never a fault.
func (in *Instance) match(pattern *ast.Pattern, terms []object.Object) (map[string]object.Object, bool) {
	if len(pattern.Terms) != len(terms) {
		return nil, false
	}

	bindings := make(map[string]object.Object)
	for i, pt := range pattern.Terms {
		arg := terms[i]
		switch pt := pt.(type) {
		case *ast.WordTerm:
			word, ok := arg.(*object.Word)
			if !ok || word.Value != pt.Value {
				return nil, false
			}
		case *ast.LiteralTerm:
			if !object.Equals(literalValue(pt.Value), arg) {
				return nil, false
			}
		case *ast.HoleTerm:
			bindings[pt.Name] = arg
		case *ast.BlockHoleTerm:
			if _, ok := arg.(*object.Block); !ok {
				return nil, false
			}
			bindings[pt.Name] = arg
		case *ast.PredicateTerm:
			if !in.checkPredicate(pt, arg, bindings) {
				return nil, false
			}
			bindings[pt.Name] = arg
		case *ast.DiscardTerm:
			// matches anything, binds nothing
		default:
			return nil, false
		}
	}

	return bindings, true
}

// checkPredicate binds the subject to the candidate argument in a scratch
// scope, together with any holes already bound to its left, and evaluates
// the guard expression. Only a truthy, non-error result matches.
func (in *Instance) checkPredicate(pt *ast.PredicateTerm, arg object.Object, bound map[string]object.Object) bool {
	env := object.NewEnclosedEnvironment(in.Env)
	for name, val := range bound {
		env.Define(name, val)
	}
	env.Define(pt.Name, arg)

	result := in.sys.ev.EvalExpression(pt.Expr, env)
	if result == nil {
		return false
	}
	if _, isErr := result.(*object.Error); isErr {
		return false
	}
	return object.IsTruthy(result)
}

// literalValue converts a literal pattern term to its runtime value.
func literalValue(expr ast.Expression) object.Object {
	switch expr := expr.(type) {
	case *ast.IntegerLiteral:
		return &object.Integer{Value: expr.Value}
	case *ast.FloatLiteral:
		return &object.Float{Value: expr.Value}
	case *ast.StringLiteral:
		return &object.String{Value: expr.Value}
	case *ast.Boolean:
		return object.NativeBoolToBooleanObject(expr.Value)
	case *ast.Nil:
		return object.NIL
	}
	return object.NIL
}
