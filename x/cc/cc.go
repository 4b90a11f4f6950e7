// Package cc wraps a C compiler and archiver.
package cc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CC drives a C compiler and an archiver. Compiler and Archiver may carry
// leading arguments, as in CC="xcrun -sdk iphoneos clang".
type CC struct {
	Compiler []string
	Archiver []string

	Stdout io.Writer
	Stderr io.Writer
}

// New returns a CC for the given command lines. Empty values fall back to
// "cc" and "ar".
func New(compiler, archiver string) *CC {
	c := &CC{
		Compiler: strings.Fields(compiler),
		Archiver: strings.Fields(archiver),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
	if len(c.Compiler) == 0 {
		c.Compiler = []string{"cc"}
	}
	if len(c.Archiver) == 0 {
		c.Archiver = []string{"ar"}
	}
	return c
}

// Compile runs "<cc> <args> -c -o obj src", creating obj's directory.
func (c *CC) Compile(ctx context.Context, src, obj string, args ...string) error {
	if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
		return err
	}
	ccArgs := append(args[:len(args):len(args)], "-c", "-o", obj, src)
	return c.run(ctx, c.Compiler, ccArgs, c.Stdout, c.Stderr)
}

// Archive runs "<ar> crs lib objs...". An existing lib is removed first so
// stale members do not survive.
func (c *CC) Archive(ctx context.Context, lib string, objs ...string) error {
	if err := os.Remove(lib); err != nil && !os.IsNotExist(err) {
		return err
	}
	return c.run(ctx, c.Archiver, append([]string{"crs", lib}, objs...), c.Stdout, c.Stderr)
}

// Supports reports whether the compiler accepts flag, by compiling an empty
// unit in dir with -Werror.
func (c *CC) Supports(ctx context.Context, dir, flag string) bool {
	src := filepath.Join(dir, "flag_check.c")
	if err := os.WriteFile(src, nil, 0o644); err != nil {
		return false
	}
	defer os.Remove(src)
	obj := filepath.Join(dir, "flag_check.o")
	defer os.Remove(obj)
	var out bytes.Buffer
	err := c.run(ctx, c.Compiler, []string{"-Werror", flag, "-c", "-o", obj, src}, &out, &out)
	return err == nil
}

func (c *CC) run(ctx context.Context, argv, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:len(argv):len(argv)], args...)...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", strings.Join(cmd.Args, " "), err)
	}
	return nil
}
