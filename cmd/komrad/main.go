package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/evaluator"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/lexer"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/log"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/parser"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/repl"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/runtime"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/sysagents"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/util"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help       bool
	version    bool
	configPath string
	logLevel   string
	logFile    string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	flag.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	config, err := util.LoadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "komrad: %v\n", err)
		os.Exit(1)
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFile != "" {
		config.LogFile = logFile
	}

	log.InitLogger(config.LogLevel, config.LogFile, config.LogColor)
	defer log.Close()

	slogOptions := &slog.HandlerOptions{Level: slogLevel(config.LogLevel)}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, slogOptions)))

	if flag.NArg() == 0 {
		fmt.Printf("komrad v%s interactive session\n", Version)
		repl.Start(os.Stdin, os.Stdout)
		return
	}

	filename := flag.Arg(0)
	os.Exit(run(filename, flag.Args()[1:], config))
}

func run(filename string, args []string, config *util.Configuration) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "komrad: %v\n", err)
		return 1
	}
	source := string(src)

	p := parser.New(lexer.New(source), source)
	program := p.ParseProgram()
	if perr := p.FirstError(); perr != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", filename, perr.Error())
		fmt.Fprint(os.Stderr, util.GetContextLines(source, perr.Line, perr.Column))
		return 1
	}

	sys := runtime.NewSystem()
	evaluator.New(sys)
	sysagents.Install(sys)

	moduleName := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	module, err := sys.SpawnModule(moduleName, program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "komrad: %v\n", err)
		return 1
	}

	terms := []object.Object{&object.Word{Value: "main"}}
	for _, arg := range args {
		terms = append(terms, &object.String{Value: arg})
	}
	if module.Understands("main", len(terms)) {
		if err := module.Post(object.Message{Terms: terms}); err != nil {
			log.Error("CLI: could not start main: %v", err)
			return 1
		}
	}

	// run until every agent goes quiet
	for !sys.WaitIdle(time.Minute) {
		log.Debug("CLI: %d agents still busy", sys.InstanceCount())
	}
	sys.Shutdown(time.Duration(config.ShutdownGraceSeconds) * time.Second)
	return 0
}

func printVersion() {
	fmt.Printf("komrad version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: komrad [options] filename [args...]

Options:
  -config <path>     Path to a YAML configuration file.
  -log-level <level> Set the log level: trace, debug, info, warn, error, none.
  -log-file <path>   Specify a log file to write logs. Default is stderr.
  -help              Display this help information and exit.
  -version           Display version information and exit.

Details:
Komrad runs programs of message-passing agents. The file's top level is
itself an agent: its statements run at start, and if it declares a
[main ...] handler matching the command-line arguments, that message is
sent first.

Examples:
  komrad                        Start an interactive session
  komrad hello.kom              Run the program
  komrad hello.kom a b          Run it with two arguments
  komrad -log-level=debug x.kom Trace agent dispatch while running

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
