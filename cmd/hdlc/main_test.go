package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func runMain(t *testing.T, args []string) (int, string, string) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"hdlc"}, args...)

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

	stdOut := &bytes.Buffer{}
	stdErr := &bytes.Buffer{}
	exitCode := doMain(stdOut, stdErr)
	return exitCode, stdOut.String(), stdErr.String()
}

func TestHelp(t *testing.T) {
	exitCode, _, stdErr := runMain(t, []string{"-h"})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdErr, "hdlc CLI")
}

func TestInvalidCommand(t *testing.T) {
	exitCode, _, stdErr := runMain(t, []string{"bogus"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdErr, "invalid command")
}

func TestAsmMissingArgs(t *testing.T) {
	exitCode, _, stdErr := runMain(t, []string{"asm"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdErr, "missing path to assembly source file")
}

func TestAsmRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.s")
	require.NoError(t, os.WriteFile(src, []byte("LDA #$4F\nJSR $F000\n"), 0o644))

	out := filepath.Join(dir, "prog.bin")
	exitCode, stdOut, stdErr := runMain(t, []string{"asm", "-isa", "6502", "-out", out, src})
	require.Equal(t, 0, exitCode, stdErr)
	require.Contains(t, stdOut, "assembled 5 bytes")

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, []byte{0xA9, 0x4F, 0x20, 0x00, 0xF0}, got)
}

func TestAsmUnknownISA(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.s")
	require.NoError(t, os.WriteFile(src, []byte("NOP\n"), 0o644))

	exitCode, _, stdErr := runMain(t, []string{"asm", "-isa", "z80", "-out", filepath.Join(dir, "out.bin"), src})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdErr, "unknown -isa")
}

func TestCompileMissingTop(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "prog.json")
	require.NoError(t, os.WriteFile(prog, []byte(`{"Modules":{}}`), 0o644))

	exitCode, _, stdErr := runMain(t, []string{"compile", "-out", filepath.Join(dir, "out.wasm"), prog})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdErr, "missing -top")
}
