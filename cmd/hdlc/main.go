// Command hdlc is the CLI front door: compile an elaborated module tree to
// a standalone WASM module, assemble 6502/RV32I source to a raw binary, or
// compile-then-drive a circuit for a fixed number of cycles.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tefla/wire-hdl"
	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/asmcore"
	"github.com/tefla/wire-hdl/internal/asmcore/mos6502"
	"github.com/tefla/wire-hdl/internal/asmcore/rv32i"
	"github.com/tefla/wire-hdl/internal/hdlast"
	"github.com/tefla/wire-hdl/internal/runtime"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr))
}

// doMain is separated out for the purpose of unit testing.
func doMain(stdOut, stdErr io.Writer) int {
	flag.CommandLine.SetOutput(stdErr)

	var help bool
	flag.BoolVar(&help, "h", false, "Prints usage.")

	flag.Parse()

	if help || flag.NArg() == 0 {
		printUsage(stdErr)
		return 0
	}

	subCmd := flag.Arg(0)
	switch subCmd {
	case "compile":
		return doCompile(flag.Args()[1:], stdOut, stdErr)
	case "asm":
		return doAsm(flag.Args()[1:], stdOut, stdErr)
	case "run":
		return doRun(flag.Args()[1:], stdOut, stdErr)
	default:
		fmt.Fprintln(stdErr, "invalid command")
		printUsage(stdErr)
		return 1
	}
}

// doCompile reads a JSON-encoded hdlast.Program (the same shape a test
// fixture builds in Go, per internal/hdlast's own doc comment on the
// front-end being out of scope) and writes the compiled WASM module.
func doCompile(args []string, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("compile", flag.ExitOnError)
	flags.SetOutput(stdErr)

	var top string
	flags.StringVar(&top, "top", "", "Name of the module to instantiate as top-level.")

	var out string
	flags.StringVar(&out, "out", "", "Path to write the compiled WASM module to.")

	var optLevel int
	flags.IntVar(&optLevel, "O", 0, "Optimization level hint forwarded to the emitter.")

	_ = flags.Parse(args)

	if flags.NArg() < 1 {
		fmt.Fprintln(stdErr, "missing path to program JSON file")
		printCompileUsage(stdErr, flags)
		return 1
	}
	if top == "" {
		fmt.Fprintln(stdErr, "missing -top module name")
		return 1
	}
	if out == "" {
		fmt.Fprintln(stdErr, "missing -out path")
		return 1
	}

	cc, err := compileFromFile(flags.Arg(0), top, optLevel)
	if err != nil {
		fmt.Fprintf(stdErr, "error compiling program: %v\n", err)
		return 1
	}

	if err := os.WriteFile(out, cc.Wasm, 0o644); err != nil {
		fmt.Fprintf(stdErr, "error writing wasm output: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdOut, "compiled %q: %d signals, %d memory pages, exports %v\n",
		top, len(cc.Signals), cc.MemoryPages, cc.Exports)
	return 0
}

// doAsm assembles a 6502 or RV32I source file into a raw byte image.
func doAsm(args []string, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("asm", flag.ExitOnError)
	flags.SetOutput(stdErr)

	var isaName string
	flags.StringVar(&isaName, "isa", "", "Target instruction set: \"6502\" or \"rv32i\".")

	var origin uint
	flags.UintVar(&origin, "origin", 0, "Starting program counter, overridden by a leading .org directive.")

	var out string
	flags.StringVar(&out, "out", "", "Path to write the assembled binary to.")

	_ = flags.Parse(args)

	if flags.NArg() < 1 {
		fmt.Fprintln(stdErr, "missing path to assembly source file")
		printAsmUsage(stdErr, flags)
		return 1
	}
	if out == "" {
		fmt.Fprintln(stdErr, "missing -out path")
		return 1
	}

	isa, err := resolveISA(isaName)
	if err != nil {
		fmt.Fprintln(stdErr, err)
		return 1
	}

	f, err := os.Open(flags.Arg(0))
	if err != nil {
		fmt.Fprintf(stdErr, "error opening source file: %v\n", err)
		return 1
	}
	defer f.Close()

	src := asmcore.NewReaderSource(f)
	opts := asmcore.NewAssembleOptions().WithOrigin(uint32(origin))

	res, err := asmcore.Assemble(isa, src, opts)
	if err != nil {
		fmt.Fprintf(stdErr, "error assembling %s: %v\n", flags.Arg(0), err)
		return 1
	}
	for _, diag := range res.Errors {
		fmt.Fprintf(stdErr, "warning: %v\n", diag)
	}

	if err := os.WriteFile(out, res.Bytes, 0o644); err != nil {
		fmt.Fprintf(stdErr, "error writing binary output: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdOut, "assembled %d bytes, %d labels\n", len(res.Bytes), len(res.Labels))
	return 0
}

// doRun compiles a JSON program and drives it for a fixed number of
// cycles, printing the final value of each requested output signal.
func doRun(args []string, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("run", flag.ExitOnError)
	flags.SetOutput(stdErr)

	var top string
	flags.StringVar(&top, "top", "", "Name of the module to instantiate as top-level.")

	var cycles uint
	flags.UintVar(&cycles, "cycles", 1, "Number of evaluation cycles to run.")

	var watch sliceFlag
	flags.Var(&watch, "watch", "Signal name to print after running. May be specified multiple times.")

	_ = flags.Parse(args)

	if flags.NArg() < 1 {
		fmt.Fprintln(stdErr, "missing path to program JSON file")
		printRunUsage(stdErr, flags)
		return 1
	}
	if top == "" {
		fmt.Fprintln(stdErr, "missing -top module name")
		return 1
	}

	cc, err := compileFromFile(flags.Arg(0), top, 0)
	if err != nil {
		fmt.Fprintf(stdErr, "error compiling program: %v\n", err)
		return 1
	}

	rt, err := runtime.New(cc)
	if err != nil {
		fmt.Fprintf(stdErr, "error instantiating circuit: %v\n", err)
		return 1
	}
	defer rt.Close()

	if err := rt.RunCycles(uint32(cycles)); err != nil {
		fmt.Fprintf(stdErr, "error running cycles: %v\n", err)
		return 1
	}

	byName := map[string]api.SignalId{}
	for _, s := range cc.Signals {
		byName[s.Name] = s.ID
	}

	for _, name := range watch {
		id, ok := byName[name]
		if !ok {
			fmt.Fprintf(stdErr, "unknown signal %q\n", name)
			return 1
		}
		bit, err := rt.GetSignal(id)
		if err != nil {
			fmt.Fprintf(stdErr, "error reading signal %q: %v\n", name, err)
			return 1
		}
		fmt.Fprintf(stdOut, "%s = %d\n", name, bit)
	}
	return 0
}

func compileFromFile(path, top string, optLevel int) (*api.CompiledCircuit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program file: %w", err)
	}

	var prog hdlast.Program
	if err := json.Unmarshal(raw, &prog); err != nil {
		return nil, fmt.Errorf("decoding program JSON: %w", err)
	}

	var opts []wirehdl.CompileOption
	if optLevel != 0 {
		opts = append(opts, wirehdl.WithOptimizationLevel(optLevel))
	}

	return wirehdl.Compile(&prog, top, opts...)
}

func resolveISA(name string) (asmcore.ISA, error) {
	switch name {
	case "6502":
		return mos6502.New(), nil
	case "rv32i":
		return rv32i.New(), nil
	default:
		return nil, fmt.Errorf("unknown -isa %q, want \"6502\" or \"rv32i\"", name)
	}
}

func printUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "hdlc CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  hdlc <command>")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Commands:")
	fmt.Fprintln(stdErr, "  compile\tElaborates and emits a module tree as a WASM module")
	fmt.Fprintln(stdErr, "  asm\t\tAssembles 6502/RV32I source to a raw binary")
	fmt.Fprintln(stdErr, "  run\t\tCompiles a module tree and drives it for N cycles")
}

func printCompileUsage(stdErr io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(stdErr, "Usage:\n  hdlc compile -top <module> -out <path> <program.json>")
	flags.PrintDefaults()
}

func printAsmUsage(stdErr io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(stdErr, "Usage:\n  hdlc asm -isa <6502|rv32i> -out <path> <source file>")
	flags.PrintDefaults()
}

func printRunUsage(stdErr io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(stdErr, "Usage:\n  hdlc run -top <module> [-cycles N] [-watch name]... <program.json>")
	flags.PrintDefaults()
}

type sliceFlag []string

func (f *sliceFlag) String() string { return "" }

func (f *sliceFlag) Set(s string) error {
	*f = append(*f, s)
	return nil
}
