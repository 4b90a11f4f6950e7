// Package clang wraps the clang front end for header inspection.
package clang

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Clang runs the clang binary at Path.
type Clang struct {
	Path string
}

// New returns a Clang using path, or "clang" from PATH when path is empty.
func New(path string) *Clang {
	if path == "" {
		path = "clang"
	}
	return &Clang{Path: path}
}

// ASTDump parses header as C and returns clang's JSON AST dump.
func (c *Clang) ASTDump(ctx context.Context, header string, args ...string) ([]byte, error) {
	return c.run(ctx, header, args, "-fsyntax-only", "-Xclang", "-ast-dump=json")
}

// Macros preprocesses header and returns the output with every #define and
// #undef kept in place (-dD), so line markers attribute each to its file.
func (c *Clang) Macros(ctx context.Context, header string, args ...string) ([]byte, error) {
	return c.run(ctx, header, args, "-E", "-dD")
}

func (c *Clang) run(ctx context.Context, header string, args []string, mode ...string) ([]byte, error) {
	argv := []string{"-x", "c", "-fno-color-diagnostics"}
	argv = append(argv, mode...)
	argv = append(argv, args...)
	argv = append(argv, header)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, argv...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s %s: %w\n%s", c.Path, strings.Join(argv, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
