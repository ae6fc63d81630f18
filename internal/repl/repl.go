package repl

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/ast"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/evaluator"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/lexer"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/parser"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/runtime"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/sysagents"
)

const PROMPT = ">> "

// Start runs an interactive session. Each line is a statement of one
// long-lived module agent, so definitions, spawned agents and bindings
// persist across lines.
func Start(in io.Reader, out io.Writer) {
	sys := runtime.NewSystem()
	ev := evaluator.New(sys)
	sysagents.Install(sys)
	defer sys.Shutdown(2 * time.Second)

	module, err := sys.SpawnModule("repl", &ast.Program{})
	if err != nil {
		fmt.Fprintf(out, "could not start session: %v\n", err)
		return
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		p := parser.New(lexer.New(line), line)
		program := p.ParseProgram()
		if len(p.Errors()) != 0 {
			printParserErrors(out, p.Errors())
			continue
		}

		result := ev.Eval(program, module.Env)
		if result != nil && result != object.NIL {
			io.WriteString(out, result.Inspect())
			io.WriteString(out, "\n")
		}
		sys.WaitIdle(time.Second)
	}
}

func printParserErrors(out io.Writer, errors []string) {
	io.WriteString(out, "parser errors:\n")
	for _, msg := range errors {
		io.WriteString(out, "\t"+msg+"\n")
	}
}
