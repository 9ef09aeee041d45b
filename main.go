package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mcncl/json2sql/internal/config"
	"github.com/mcncl/json2sql/internal/driver"
	"github.com/mcncl/json2sql/internal/errors"
	"github.com/mcncl/json2sql/internal/sink"
)

// CLI defines the command-line interface
var CLI struct {
	Input  string `arg:"" help:"Path to the input file, one JSON object per line. Use - for stdin."`
	Output string `arg:"" help:"Path to the output SQL file. Use - for stdout; a .gz suffix compresses."`

	Config          string           `help:"Path to a config file. Defaults to .json2sql.yml found in the current or a parent directory." short:"c" type:"path"`
	Terminator      string           `help:"Batch terminator written after each statement (GO or ;)." short:"t"`
	Table           string           `help:"Table name. Defaults to the input file name up to its first dot."`
	Nested          string           `help:"How nested objects and arrays are handled: flatten or strict."`
	Strict          bool             `help:"Skip documents containing nested objects or arrays instead of flattening them. Same as --nested=strict."`
	AbortOnCapacity bool             `help:"Abort the run when a document exceeds a row, key or value limit."`
	DDL             string           `help:"Also write a CREATE TABLE hint for all columns seen to this path." name:"ddl" type:"path"`
	Naming          string           `help:"Column naming style: upper, screaming_snake or snake."`
	Workers         int              `help:"Number of lines converted in parallel." short:"w"`
	Dedup           bool             `help:"Emit identical input lines only once."`
	Driver          string           `help:"Also execute statements against a database: sqlite, postgres, sqlserver or mysql."`
	DSN             string           `help:"Data source name for --driver." name:"dsn"`
	Verbose         bool             `help:"Log skipped lines and a run summary to stderr." short:"v"`
	Version         kong.VersionFlag `help:"Show version information."`
}

// Context holds the runtime context
type Context struct {
	Config *config.Config
	Logger *log.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("json2sql"),
		kong.Description("Convert a file of JSON lines into SQL INSERT statements"),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("json2sql version %s", Version)},
	)

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		parser.FatalIfErrorf(err)
	}

	cfg, err := config.LoadConfigWithCLI(CLI.Config, overrides())
	if err != nil {
		fail(err)
	}

	err = run(&Context{
		Config: cfg,
		Logger: log.New(os.Stderr, "json2sql: ", 0),
	})
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	// Use our custom error handling to provide user-friendly error messages
	fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
	fmt.Fprintf(os.Stderr, "\nFor help, run: json2sql --help\n")
	os.Exit(1)
}

// overrides collects the flags that take precedence over the config file
func overrides() config.Overrides {
	return config.Overrides{
		Terminator:      CLI.Terminator,
		Table:           CLI.Table,
		DDL:             CLI.DDL,
		Nested:          CLI.Nested,
		Naming:          CLI.Naming,
		Workers:         CLI.Workers,
		Driver:          CLI.Driver,
		DSN:             CLI.DSN,
		Strict:          CLI.Strict,
		AbortOnCapacity: CLI.AbortOnCapacity,
		Dedup:           CLI.Dedup,
		Verbose:         CLI.Verbose,
	}
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config
	bg := context.Background()

	// 1. Resolve the table name once for the whole run
	table, err := tableName(cfg)
	if err != nil {
		return err
	}

	// 2. Open input and output before reading anything
	in, err := openInput(CLI.Input)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	outs, err := openSink(bg, cfg)
	if err != nil {
		return err
	}
	out := outs.sink()

	// 3. Convert line by line
	d := driver.New(cfg, ctx.Logger)
	if _, err := d.Run(bg, in, table, out); err != nil {
		_ = sink.Abort(out)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if cfg.Dev.Verbose {
		outs.report(ctx.Logger)
	}

	// 4. Optional schema hint
	if cfg.Output.DDL != "" {
		return d.WriteDDL(cfg.Output.DDL, table)
	}
	return nil
}

func tableName(cfg *config.Config) (string, error) {
	if cfg.Output.Table != "" {
		return cfg.Output.Table, nil
	}
	if CLI.Input == "" || CLI.Input == "-" {
		return "", errors.NewConfigError("--table is required when reading from stdin", errors.ErrEmptyTableName)
	}
	return driver.TableName(CLI.Input)
}

// openInput opens the input file or stdin
func openInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("file '%s' not found", path), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("cannot open file '%s'", path), err)
	}
	return file, nil
}

// outputs holds the sinks a run writes to
type outputs struct {
	file *sink.File
	db   *sink.Database
}

func (o *outputs) sink() sink.Sink {
	if o.db == nil {
		return o.file
	}
	return sink.Multi{o.file, o.db}
}

// report logs what each sink received
func (o *outputs) report(logger *log.Logger) {
	logger.Printf("%d statements written to %s", o.file.Written(), CLI.Output)
	if o.db != nil {
		logger.Printf("%d statements executed, %d without columns skipped", o.db.Executed(), o.db.Skipped())
	}
}

// openSink opens the output file and, when configured, the database
func openSink(ctx context.Context, cfg *config.Config) (*outputs, error) {
	file, err := sink.NewFile(CLI.Output)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "" {
		return &outputs{file: file}, nil
	}

	db, err := sink.OpenDatabase(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &outputs{file: file, db: db}, nil
}
