package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// ErrMachineNotFound is returned when a requested machine id is not registered
var ErrMachineNotFound = errors.New("machine not found")

// MachineExporter produces the XState form of one automaton.
// XStateExporter[K] implements it for any trigger type.
type MachineExporter interface {
	Export() (*XStateMachine, error)
}

// ExportOptions configures how machines are written
type ExportOptions struct {
	// PrettyPrint indents the JSON with Indent
	PrettyPrint bool

	// Indent defaults to two spaces
	Indent string

	// Output defaults to os.Stdout
	Output io.Writer

	// MachineID restricts ExportAll to one machine, written unwrapped
	MachineID string
}

// DefaultExportOptions returns compact output to os.Stdout
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Indent: "  ",
		Output: os.Stdout,
	}
}

func (o ExportOptions) writer() io.Writer {
	if o.Output == nil {
		return os.Stdout
	}
	return o.Output
}

// ExportMachine writes a single machine as one JSON document
func ExportMachine(exporter MachineExporter, opts ExportOptions) error {
	machine, err := exporter.Export()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return encode(opts.writer(), machine, opts)
}

// ExportAll writes every machine as one JSON object keyed by machine id, or
// only opts.MachineID when set. Machines are exported in id order and the
// first failure aborts the export.
func ExportAll(machines map[string]MachineExporter, opts ExportOptions) error {
	if opts.MachineID != "" {
		exporter, ok := machines[opts.MachineID]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMachineNotFound, opts.MachineID)
		}
		return ExportMachine(exporter, opts)
	}

	result := make(map[string]*XStateMachine, len(machines))
	for _, id := range slices.Sorted(maps.Keys(machines)) {
		machine, err := machines[id].Export()
		if err != nil {
			return fmt.Errorf("export %q: %w", id, err)
		}
		result[id] = machine
	}
	return encode(opts.writer(), result, opts)
}

// encode writes v followed by a newline. Labels such as "a->b" are kept
// unescaped so the output pastes cleanly into visualizers.
func encode(w io.Writer, v any, opts ExportOptions) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if opts.PrettyPrint {
		indent := opts.Indent
		if indent == "" {
			indent = "  "
		}
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// RunCLI runs the export command line against os.Stdout.
// Usage: [-pretty] [-indent=STR] [-machine=ID] [-o=FILE] [-list]
func RunCLI(machines map[string]MachineExporter, args []string) error {
	return RunCLIWithOutput(machines, args, os.Stdout)
}

// RunCLIWithOutput is RunCLI writing to stdout. With -o the document is
// written to the file in one atomic replace and nothing goes to stdout.
func RunCLIWithOutput(machines map[string]MachineExporter, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("automaton-export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	opts := DefaultExportOptions()
	fs.BoolVar(&opts.PrettyPrint, "pretty", false, "Pretty-print JSON output")
	fs.StringVar(&opts.Indent, "indent", opts.Indent, "Indentation string (used with -pretty)")
	fs.StringVar(&opts.MachineID, "machine", "", "Export only this machine ID")
	output := fs.String("o", "", "Output file (default: stdout)")
	list := fs.Bool("list", false, "List available machine IDs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *list {
		return listMachines(stdout, machines)
	}

	if *output == "" {
		opts.Output = stdout
		return ExportAll(machines, opts)
	}

	var buf bytes.Buffer
	opts.Output = &buf
	if err := ExportAll(machines, opts); err != nil {
		return err
	}
	if err := writeFile(*output, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", *output, err)
	}
	return nil
}

func listMachines(w io.Writer, machines map[string]MachineExporter) error {
	if _, err := fmt.Fprintln(w, "Available machines:"); err != nil {
		return err
	}
	for _, id := range slices.Sorted(maps.Keys(machines)) {
		if _, err := fmt.Fprintf(w, "  - %s\n", id); err != nil {
			return err
		}
	}
	return nil
}
