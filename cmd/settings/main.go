// File: lixenwraith/settings/cmd/settings/main.go
// Command settings reads and edits a settings file from the shell.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lixenwraith/settings"
)

const usage = `usage: settings [flags] <command> [args]

commands:
  get <key>           print the value at key
  set <key> <value>   store value (bool, int, float or string)
  delete <key>        remove key
  exists <key>        exit 0 if key exists, 2 otherwise
  keys                list dotted leaf keys
  dump                print all settings (-format toml|yaml)
  debug               print every key with its current and default value

flags:
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var exitErr exitCode
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr))
		}
		fmt.Fprintln(os.Stderr, "settings:", err)
		os.Exit(1)
	}
}

// exitCode ends the program with a status and no message.
type exitCode int

func (e exitCode) Error() string { return "exit " + strconv.Itoa(int(e)) }

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	fs.SetOutput(stderr)
	name := fs.String("name", "settings", "settings name (selects the default file location)")
	file := fs.String("file", "", "explicit settings file path")
	format := fs.String("format", "", "output format for dump (toml or yaml)")
	readOnly := fs.Bool("read-only", false, "refuse to modify the file")
	noMeta := fs.Bool("no-metadata", false, "do not maintain the metadata block")
	verbose := fs.Bool("v", false, "log debug records to stderr")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitCode(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	builder := settings.NewBuilder(*name).
		WithReadOnly(*readOnly).
		WithSaveMetadata(!*noMeta).
		WithLogger(logger)
	if *file != "" {
		builder = builder.WithFile(*file)
	} else {
		opts := settings.DefaultDiscoveryOptions(*name)
		opts.Args = nil
		builder = builder.WithFileDiscovery(opts)
	}

	s, err := builder.Build()
	if err != nil {
		return err
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "get":
		if len(rest) != 1 {
			return fmt.Errorf("get takes exactly one key")
		}
		value, err := s.Get(rest[0])
		if err != nil {
			return err
		}
		return printValue(stdout, value)

	case "set":
		if len(rest) != 2 {
			return fmt.Errorf("set takes a key and a value")
		}
		return s.Set(rest[0], parseValue(rest[1]))

	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("delete takes exactly one key")
		}
		return s.Delete(rest[0])

	case "exists":
		if len(rest) != 1 {
			return fmt.Errorf("exists takes exactly one key")
		}
		found, err := s.Exists(rest[0])
		if err != nil {
			return err
		}
		if !found {
			return exitCode(2)
		}
		return nil

	case "keys":
		return s.Range(func(key string, _ any) bool {
			fmt.Fprintln(stdout, key)
			return true
		})

	case "dump":
		if *format == "" {
			return s.Dump(stdout)
		}
		codec, err := settings.CodecByName(*format)
		if err != nil {
			return err
		}
		snapshot, err := s.Snapshot()
		if err != nil {
			return err
		}
		data, err := codec.Encode(snapshot)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err

	case "debug":
		_, err := fmt.Fprint(stdout, s.Debug())
		return err

	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// printValue writes scalars plainly and tables/arrays as TOML.
func printValue(w io.Writer, value any) error {
	switch v := value.(type) {
	case map[string]any:
		data, err := settings.TOMLCodec{}.Encode(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprintf("%v", item)
		}
		_, err := fmt.Fprintf(w, "[%s]\n", strings.Join(parts, ", "))
		return err
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

// parseValue attempts to parse a string into int64, float64 or bool,
// falling back to the string with surrounding quotes removed.
func parseValue(s string) any {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
