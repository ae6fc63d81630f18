package sysagents

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

// dbState holds the open connections and transactions of the db agent.
// The agent dispatches sequentially, so the mutex only guards against a
// second db agent in tests.
type dbState struct {
	mu     sync.Mutex
	nextID int64
	conns  map[int64]*sql.DB
	txs    map[int64]*sql.Tx
}

func dbDispatch() func(object.Message) object.Object {
	st := &dbState{
		conns: map[int64]*sql.DB{},
		txs:   map[int64]*sql.Tx{},
	}

	return dispatcher("db", map[string]opFunc{
		"open": func(args []object.Object) object.Object {
			driver, err := wantString("open", args, 0)
			if err != nil {
				return err
			}
			dsn, err := wantString("open", args, 1)
			if err != nil {
				return err
			}

			db, openErr := sql.Open(driver, dsn)
			if openErr != nil {
				return errorf("open: %v", openErr)
			}
			if pingErr := db.Ping(); pingErr != nil {
				db.Close()
				return errorf("open: %v", pingErr)
			}

			st.mu.Lock()
			st.nextID++
			id := st.nextID
			st.conns[id] = db
			st.mu.Unlock()
			return &object.Integer{Value: id}
		},
		"query": func(args []object.Object) object.Object {
			id, err := wantInt("query", args, 0)
			if err != nil {
				return err
			}
			query, err := wantString("query", args, 1)
			if err != nil {
				return err
			}

			st.mu.Lock()
			db, ok := st.conns[id]
			tx := st.txs[id]
			st.mu.Unlock()
			if !ok {
				return errorf("query: invalid connection handle %d", id)
			}

			params := sqlParams(args[2:])
			var rows *sql.Rows
			var qErr error
			if tx != nil {
				rows, qErr = tx.Query(query, params...)
			} else {
				rows, qErr = db.Query(query, params...)
			}
			if qErr != nil {
				return errorf("query: %v", qErr)
			}
			defer rows.Close()
			return renderRows(rows)
		},
		"exec": func(args []object.Object) object.Object {
			id, err := wantInt("exec", args, 0)
			if err != nil {
				return err
			}
			stmt, err := wantString("exec", args, 1)
			if err != nil {
				return err
			}

			st.mu.Lock()
			db, ok := st.conns[id]
			tx := st.txs[id]
			st.mu.Unlock()
			if !ok {
				return errorf("exec: invalid connection handle %d", id)
			}

			params := sqlParams(args[2:])
			var result sql.Result
			var eErr error
			if tx != nil {
				result, eErr = tx.Exec(stmt, params...)
			} else {
				result, eErr = db.Exec(stmt, params...)
			}
			if eErr != nil {
				return errorf("exec: %v", eErr)
			}

			affected, _ := result.RowsAffected()
			lastID, _ := result.LastInsertId()
			out := object.NewMap()
			out.Set(&object.String{Value: "rowsAffected"}, &object.Integer{Value: affected})
			out.Set(&object.String{Value: "lastInsertId"}, &object.Integer{Value: lastID})
			return out
		},
		"begin": func(args []object.Object) object.Object {
			id, err := wantInt("begin", args, 0)
			if err != nil {
				return err
			}
			st.mu.Lock()
			defer st.mu.Unlock()
			db, ok := st.conns[id]
			if !ok {
				return errorf("begin: invalid connection handle %d", id)
			}
			if _, open := st.txs[id]; open {
				return errorf("begin: transaction already open on %d", id)
			}
			tx, txErr := db.Begin()
			if txErr != nil {
				return errorf("begin: %v", txErr)
			}
			st.txs[id] = tx
			return args[0]
		},
		"commit": func(args []object.Object) object.Object {
			id, err := wantInt("commit", args, 0)
			if err != nil {
				return err
			}
			st.mu.Lock()
			tx, ok := st.txs[id]
			delete(st.txs, id)
			st.mu.Unlock()
			if !ok {
				return errorf("commit: no open transaction on %d", id)
			}
			if txErr := tx.Commit(); txErr != nil {
				return errorf("commit: %v", txErr)
			}
			return args[0]
		},
		"rollback": func(args []object.Object) object.Object {
			id, err := wantInt("rollback", args, 0)
			if err != nil {
				return err
			}
			st.mu.Lock()
			tx, ok := st.txs[id]
			delete(st.txs, id)
			st.mu.Unlock()
			if !ok {
				return errorf("rollback: no open transaction on %d", id)
			}
			if txErr := tx.Rollback(); txErr != nil {
				return errorf("rollback: %v", txErr)
			}
			return args[0]
		},
		"close": func(args []object.Object) object.Object {
			id, err := wantInt("close", args, 0)
			if err != nil {
				return err
			}
			st.mu.Lock()
			if tx, ok := st.txs[id]; ok {
				tx.Rollback()
				delete(st.txs, id)
			}
			if db, ok := st.conns[id]; ok {
				db.Close()
				delete(st.conns, id)
			}
			st.mu.Unlock()
			return object.NIL
		},
	})
}

func sqlParams(args []object.Object) []interface{} {
	params := make([]interface{}, len(args))
	for i, arg := range args {
		switch arg := arg.(type) {
		case *object.Integer:
			params[i] = arg.Value
		case *object.Float:
			params[i] = arg.Value
		case *object.Boolean:
			params[i] = arg.Value
		case *object.Nil:
			params[i] = nil
		default:
			params[i] = text(arg)
		}
	}
	return params
}

// renderRows converts a result set into a list of maps keyed by column
// name.
func renderRows(rows *sql.Rows) object.Object {
	columns, err := rows.Columns()
	if err != nil {
		return errorf("query: %v", err)
	}

	var out []object.Object
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return errorf("query: %v", err)
		}

		row := object.NewMap()
		for i, col := range columns {
			row.Set(&object.String{Value: col}, sqlValue(values[i]))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return errorf("query: %v", err)
	}
	return &object.List{Elements: out}
}

func sqlValue(value interface{}) object.Object {
	switch value := value.(type) {
	case nil:
		return object.NIL
	case bool:
		return object.NativeBoolToBooleanObject(value)
	case int64:
		return &object.Integer{Value: value}
	case float64:
		return &object.Float{Value: value}
	case []byte:
		return &object.String{Value: string(value)}
	case string:
		return &object.String{Value: value}
	}
	return &object.String{Value: fmt.Sprintf("%v", value)}
}
