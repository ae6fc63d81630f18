package object

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/ast"
)

const (
	NIL_OBJ     = "NIL"
	BOOLEAN_OBJ = "BOOLEAN"
	INTEGER_OBJ = "INTEGER"
	FLOAT_OBJ   = "FLOAT"
	STRING_OBJ  = "STRING"
	WORD_OBJ    = "WORD"

	LIST_OBJ = "LIST"
	MAP_OBJ  = "MAP"

	BLOCK_OBJ     = "BLOCK"
	AGENT_REF_OBJ = "AGENT_REF"
	EMBEDDED_OBJ  = "EMBEDDED"
	ERROR_OBJ     = "ERROR"
)

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Hashable interface {
	Object
	MapKey() MapKey
}

type MapKey struct {
	Type  ObjectType
	Value uint64
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) MapKey() MapKey {
	return MapKey{Type: i.Type(), Value: uint64(i.Value)}
}

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'g', -1, 64) }
func (f *Float) MapKey() MapKey {
	return MapKey{Type: f.Type(), Value: math.Float64bits(f.Value)}
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }
func (b *Boolean) MapKey() MapKey {
	var value uint64
	if b.Value {
		value = 1
	}
	return MapKey{Type: b.Type(), Value: value}
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }
func (s *String) MapKey() MapKey {
	h := fnv.New64a()
	h.Write([]byte(s.Value))
	return MapKey{Type: s.Type(), Value: h.Sum64()}
}

// Word is a bare selector token inside a message: an identifier that was
// unbound in the sender's environment. Words compare by text.
type Word struct {
	Value string
}

func (w *Word) Type() ObjectType { return WORD_OBJ }
func (w *Word) Inspect() string  { return w.Value }
func (w *Word) MapKey() MapKey {
	h := fnv.New64a()
	h.Write([]byte(w.Value))
	return MapKey{Type: w.Type(), Value: h.Sum64()}
}

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	var out bytes.Buffer
	elements := []string{}
	for _, e := range l.Elements {
		elements = append(elements, e.Inspect())
	}
	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")
	return out.String()
}

type MapPair struct {
	Key   Object
	Value Object
}

// Map is an ordered mapping: Order records first-insertion order of keys.
type Map struct {
	Pairs map[MapKey]MapPair
	Order []MapKey
}

func NewMap() *Map {
	return &Map{Pairs: make(map[MapKey]MapPair)}
}

// Set inserts or replaces a pair, preserving first-insertion order.
func (m *Map) Set(key Hashable, value Object) {
	mk := key.MapKey()
	if _, exists := m.Pairs[mk]; !exists {
		m.Order = append(m.Order, mk)
	}
	m.Pairs[mk] = MapPair{Key: key, Value: value}
}

func (m *Map) Get(key Hashable) (Object, bool) {
	pair, ok := m.Pairs[key.MapKey()]
	if !ok {
		return nil, false
	}
	return pair.Value, true
}

func (m *Map) Type() ObjectType { return MAP_OBJ }
func (m *Map) Inspect() string {
	var out bytes.Buffer
	pairs := []string{}
	for _, mk := range m.Order {
		pair := m.Pairs[mk]
		pairs = append(pairs, pair.Key.Inspect()+": "+pair.Value.Inspect())
	}
	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")
	return out.String()
}

// Block pairs an immutable statement list with the environment captured
// when the block literal was evaluated. Running it twice re-runs the
// statements from the top against that same captured environment.
type Block struct {
	Body *ast.Block
	Env  *Environment
}

func (b *Block) Type() ObjectType { return BLOCK_OBJ }
func (b *Block) Inspect() string  { return b.Body.String() }

// Embedded is a fenced verbatim text segment with its tag words.
type Embedded struct {
	Tags []string
	Text string
}

func (e *Embedded) Type() ObjectType { return EMBEDDED_OBJ }
func (e *Embedded) Inspect() string  { return e.Text }

type Error struct {
	Message  string
	Position int // src byte offset, -1 when unknown
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR: " + e.Message }

// Equals is structural equality over the literal-comparable value kinds.
// Agent references are equal when they address the same mailbox.
func Equals(a, b Object) bool {
	switch a := a.(type) {
	case *Integer:
		if b, ok := b.(*Integer); ok {
			return a.Value == b.Value
		}
		if b, ok := b.(*Float); ok {
			return float64(a.Value) == b.Value
		}
	case *Float:
		if b, ok := b.(*Float); ok {
			return a.Value == b.Value
		}
		if b, ok := b.(*Integer); ok {
			return a.Value == float64(b.Value)
		}
	case *String:
		if b, ok := b.(*String); ok {
			return a.Value == b.Value
		}
	case *Word:
		if b, ok := b.(*Word); ok {
			return a.Value == b.Value
		}
	case *Boolean:
		if b, ok := b.(*Boolean); ok {
			return a.Value == b.Value
		}
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *AgentRef:
		if b, ok := b.(*AgentRef); ok {
			return a.ID == b.ID
		}
	case *List:
		b, ok := b.(*List)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equals(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsTruthy follows the language's boolean coercion: nil and false are
// falsy, everything else is truthy.
func IsTruthy(obj Object) bool {
	switch obj {
	case NIL:
		return false
	case TRUE:
		return true
	case FALSE:
		return false
	}
	switch obj := obj.(type) {
	case *Nil:
		return false
	case *Boolean:
		return obj.Value
	}
	return true
}

func NativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}
