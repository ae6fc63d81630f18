package sysagents

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

func msg(selector string, args ...object.Object) object.Message {
	terms := append([]object.Object{&object.Word{Value: selector}}, args...)
	return object.Message{Terms: terms}
}

func str(s string) *object.String  { return &object.String{Value: s} }
func num(n int64) *object.Integer  { return &object.Integer{Value: n} }
func isErr(obj object.Object) bool { return obj != nil && obj.Type() == object.ERROR_OBJ }

func TestIoPrintln(t *testing.T) {
	var buf bytes.Buffer
	dispatch := ioDispatch(&buf)

	result := dispatch(msg("println", str("hello"), num(42), &object.Word{Value: "world"}))
	if isErr(result) {
		t.Fatalf("println failed: %s", result.Inspect())
	}
	if got := buf.String(); got != "hello 42 world\n" {
		t.Errorf("output = %q", got)
	}
}

func TestIoUnknownSelector(t *testing.T) {
	dispatch := ioDispatch(&bytes.Buffer{})
	result := dispatch(msg("sing"))
	if !isErr(result) {
		t.Fatal("expected error for unknown selector")
	}
}

func TestFsRoundTrip(t *testing.T) {
	dispatch := fsDispatch()
	path := filepath.Join(t.TempDir(), "note.txt")

	if result := dispatch(msg("write", str(path), str("hello"))); isErr(result) {
		t.Fatalf("write failed: %s", result.Inspect())
	}
	if result := dispatch(msg("append", str(path), str(" again"))); isErr(result) {
		t.Fatalf("append failed: %s", result.Inspect())
	}

	result := dispatch(msg("read", str(path)))
	content, ok := result.(*object.String)
	if !ok {
		t.Fatalf("read did not return a string: %s", result.Inspect())
	}
	if content.Value != "hello again" {
		t.Errorf("content = %q", content.Value)
	}

	exists := dispatch(msg("exists", str(path)))
	if exists != object.TRUE {
		t.Error("exists = false for written file")
	}

	if result := dispatch(msg("delete", str(path))); isErr(result) {
		t.Fatalf("delete failed: %s", result.Inspect())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still present after delete")
	}
}

func TestNumberOps(t *testing.T) {
	dispatch := numberDispatch()

	tests := []struct {
		message  object.Message
		expected object.Object
	}{
		{msg("parse", str("42")), num(42)},
		{msg("parse", str("2.5")), &object.Float{Value: 2.5}},
		{msg("floor", &object.Float{Value: 2.9}), num(2)},
		{msg("ceil", &object.Float{Value: 2.1}), num(3)},
		{msg("round", &object.Float{Value: 2.5}), num(3)},
		{msg("abs", num(-7)), num(7)},
		{msg("max", num(3), num(9)), num(9)},
		{msg("min", num(3), num(9)), num(3)},
	}

	for _, tt := range tests {
		result := dispatch(tt.message)
		if !object.Equals(result, tt.expected) {
			t.Errorf("%s: got %s, want %s", tt.message.String(), result.Inspect(), tt.expected.Inspect())
		}
	}

	if result := dispatch(msg("parse", str("not-a-number"))); !isErr(result) {
		t.Error("expected parse error")
	}
}

func TestJsonRoundTrip(t *testing.T) {
	dispatch := jsonDispatch()

	m := object.NewMap()
	m.Set(str("name"), str("ada"))
	m.Set(str("age"), num(36))
	m.Set(str("tags"), &object.List{Elements: []object.Object{str("a"), str("b")}})

	encoded := dispatch(msg("encode", m))
	s, ok := encoded.(*object.String)
	if !ok {
		t.Fatalf("encode did not return a string: %s", encoded.Inspect())
	}

	decoded := dispatch(msg("decode", s))
	back, ok := decoded.(*object.Map)
	if !ok {
		t.Fatalf("decode did not return a map: %s", decoded.Inspect())
	}

	name, _ := back.Get(str("name"))
	if name.(*object.String).Value != "ada" {
		t.Errorf("name = %s", name.Inspect())
	}
	age, _ := back.Get(str("age"))
	if age.(*object.Integer).Value != 36 {
		t.Errorf("age = %s", age.Inspect())
	}
	tags, _ := back.Get(str("tags"))
	if len(tags.(*object.List).Elements) != 2 {
		t.Errorf("tags = %s", tags.Inspect())
	}
}

func TestJsonDecodeInvalid(t *testing.T) {
	dispatch := jsonDispatch()
	if result := dispatch(msg("decode", str("{nope"))); !isErr(result) {
		t.Error("expected decode error")
	}
}

func TestDictOps(t *testing.T) {
	dispatch := dictDispatch()

	m := dispatch(msg("new")).(*object.Map)
	dispatch(msg("set", m, str("a"), num(1)))
	dispatch(msg("set", m, str("b"), num(2)))

	got := dispatch(msg("get", m, str("a")))
	if got.(*object.Integer).Value != 1 {
		t.Errorf("get a = %s", got.Inspect())
	}
	if dispatch(msg("has", m, str("b"))) != object.TRUE {
		t.Error("has b = false")
	}
	if dispatch(msg("get", m, str("zzz"))) != object.NIL {
		t.Error("get missing key should be nil")
	}

	size := dispatch(msg("size", m))
	if size.(*object.Integer).Value != 2 {
		t.Errorf("size = %s", size.Inspect())
	}

	keys := dispatch(msg("keys", m)).(*object.List)
	if len(keys.Elements) != 2 || keys.Elements[0].(*object.String).Value != "a" {
		t.Errorf("keys lost insertion order: %s", keys.Inspect())
	}

	other := dispatch(msg("new")).(*object.Map)
	dispatch(msg("set", other, str("b"), num(20)))
	dispatch(msg("set", other, str("c"), num(3)))
	merged := dispatch(msg("merge", m, other)).(*object.Map)
	if len(merged.Pairs) != 3 {
		t.Errorf("merged size = %d, want 3", len(merged.Pairs))
	}
	if v, _ := merged.Get(str("b")); v.(*object.Integer).Value != 20 {
		t.Errorf("merge should prefer the second map, b = %s", v.Inspect())
	}
	if v, _ := m.Get(str("b")); v.(*object.Integer).Value != 2 {
		t.Error("merge must not mutate its inputs")
	}

	dispatch(msg("delete", m, str("a")))
	if dispatch(msg("has", m, str("a"))) != object.FALSE {
		t.Error("a still present after delete")
	}
}

func TestListOps(t *testing.T) {
	dispatch := listDispatch()

	l := dispatch(msg("new", num(1), num(2))).(*object.List)

	pushed := dispatch(msg("push", l, num(3))).(*object.List)
	if len(pushed.Elements) != 3 {
		t.Fatalf("push gave %d elements", len(pushed.Elements))
	}
	if len(l.Elements) != 2 {
		t.Error("push mutated the original list")
	}

	got := dispatch(msg("get", pushed, num(2)))
	if got.(*object.Integer).Value != 3 {
		t.Errorf("get 2 = %s", got.Inspect())
	}
	if result := dispatch(msg("get", pushed, num(9))); !isErr(result) {
		t.Error("expected out of range error")
	}

	head := dispatch(msg("head", pushed))
	if head.(*object.Integer).Value != 1 {
		t.Errorf("head = %s", head.Inspect())
	}
	tail := dispatch(msg("tail", pushed)).(*object.List)
	if len(tail.Elements) != 2 {
		t.Errorf("tail = %s", tail.Inspect())
	}

	rev := dispatch(msg("reverse", pushed)).(*object.List)
	if rev.Elements[0].(*object.Integer).Value != 3 {
		t.Errorf("reverse = %s", rev.Inspect())
	}

	if dispatch(msg("contains", pushed, num(2))) != object.TRUE {
		t.Error("contains 2 = false")
	}

	joined := dispatch(msg("join", &object.List{Elements: []object.Object{str("a"), str("b")}}, str("-")))
	if joined.(*object.String).Value != "a-b" {
		t.Errorf("join = %s", joined.Inspect())
	}
}

func TestTimeFormat(t *testing.T) {
	dispatch := timeDispatch()

	result := dispatch(msg("format", num(0)))
	s, ok := result.(*object.String)
	if !ok {
		t.Fatalf("format did not return a string: %s", result.Inspect())
	}
	if s.Value != "1970-01-01T00:00:00Z" {
		t.Errorf("format = %q", s.Value)
	}

	now := dispatch(msg("now"))
	if _, ok := now.(*object.Integer); !ok {
		t.Errorf("now did not return an integer: %s", now.Inspect())
	}
}

func TestDbSqlite(t *testing.T) {
	dispatch := dbDispatch()

	opened := dispatch(msg("open", str("sqlite3"), str(":memory:")))
	handle, ok := opened.(*object.Integer)
	if !ok {
		t.Fatalf("open failed: %s", opened.Inspect())
	}

	if result := dispatch(msg("exec", handle, str("create table kv (k text, v int)"))); isErr(result) {
		t.Fatalf("create failed: %s", result.Inspect())
	}

	result := dispatch(msg("exec", handle, str("insert into kv values (?, ?)"), str("answer"), num(42)))
	report, ok := result.(*object.Map)
	if !ok {
		t.Fatalf("insert failed: %s", result.Inspect())
	}
	affected, _ := report.Get(str("rowsAffected"))
	if affected.(*object.Integer).Value != 1 {
		t.Errorf("rowsAffected = %s", affected.Inspect())
	}

	rows := dispatch(msg("query", handle, str("select k, v from kv")))
	list, ok := rows.(*object.List)
	if !ok {
		t.Fatalf("query failed: %s", rows.Inspect())
	}
	if len(list.Elements) != 1 {
		t.Fatalf("query returned %d rows", len(list.Elements))
	}
	row := list.Elements[0].(*object.Map)
	v, _ := row.Get(str("v"))
	if v.(*object.Integer).Value != 42 {
		t.Errorf("v = %s", v.Inspect())
	}

	// rolled-back insert is invisible
	dispatch(msg("begin", handle))
	dispatch(msg("exec", handle, str("insert into kv values ('x', 1)")))
	dispatch(msg("rollback", handle))
	rows = dispatch(msg("query", handle, str("select count(*) as n from kv")))
	count, _ := rows.(*object.List).Elements[0].(*object.Map).Get(str("n"))
	if count.(*object.Integer).Value != 1 {
		t.Errorf("count after rollback = %s", count.Inspect())
	}

	dispatch(msg("close", handle))
	if result := dispatch(msg("query", handle, str("select 1"))); !isErr(result) {
		t.Error("expected error after close")
	}
}
