// Package bindgen turns the lwIP public headers into a cgo binding file.
//
// The headers are parsed through one aggregator header with the same include
// path the archive is compiled with. The emitted file refers to C types by
// alias only and carries no size or offset assertions: layouts differ between
// targets and the file must not pin the host's. size_t is emitted as a
// fixed-width integer sized from the target, not the host.
package bindgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goplus/lwipbuild/internal/target"
	"github.com/qiniu/x/log"
)

// Options configures Generate.
type Options struct {
	// Header is the aggregator header.
	Header string
	// Includes is the header search path shared with the compiler.
	Includes target.IncludePath
	// Allow limits emitted declarations to files under these directories.
	// The zero value allows everything under Includes.
	Allow  target.IncludePath
	Target target.Target
	// Output is the binding file, overwritten on success.
	Output string
	// Package is the Go package name. Defaults to the base name of Output's
	// directory.
	Package  string
	FrontEnd FrontEnd
}

// Output describes a generated binding file.
type Output struct {
	Path string
	// Args are the front end arguments the header was parsed with.
	Args []string
}

// Error reports a header that could not be turned into bindings.
type Error struct {
	Header string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generate bindings for %s: %v", e.Header, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type archOS struct {
	arch, os string
}

// targetOverrides pins the front end's target for combinations where its
// own detection is unreliable (rust-lang/rust-bindgen#1211).
var targetOverrides = map[archOS]string{
	{"arm64", "ios"}: "arm64-apple-ios",
}

// TargetOverride returns the triple the front end must be forced to for tg.
func TargetOverride(tg target.Target) (string, bool) {
	triple, ok := targetOverrides[archOS{tg.Arch, tg.OS}]
	return triple, ok
}

// Args returns the front end arguments for includes and tg.
func Args(includes target.IncludePath, tg target.Target) []string {
	args := append(includes.Args(), "-Wno-everything")
	if triple, ok := TargetOverride(tg); ok {
		args = append(args, "--target="+triple)
	}
	return args
}

// Render parses the header and returns the binding source without writing it.
func Render(ctx context.Context, opts Options) ([]byte, []string, error) {
	args := Args(opts.Includes, opts.Target)
	ptrSize, err := opts.Target.PointerSize()
	if err != nil {
		return nil, args, &Error{Header: opts.Header, Err: err}
	}
	unit, err := opts.FrontEnd.Parse(ctx, opts.Header, args)
	if err != nil {
		return nil, args, &Error{Header: opts.Header, Err: err}
	}
	allow := opts.Allow
	if allow.Len() == 0 {
		allow = opts.Includes
	}
	unit = unit.filter(allow)
	if unit.empty() {
		return nil, args, &Error{Header: opts.Header, Err: fmt.Errorf("no declarations found under %s", allow)}
	}

	pkg := opts.Package
	if pkg == "" {
		pkg = filepath.Base(filepath.Dir(opts.Output))
	}
	src, err := newEmitter(pkg, filepath.Base(opts.Header), opts.Target.Triple, ptrSize).emit(unit)
	if err != nil {
		return nil, args, &Error{Header: opts.Header, Err: err}
	}
	return src, args, nil
}

// Generate parses the header and replaces the binding file. On failure the
// previous file, if any, is left untouched.
func Generate(ctx context.Context, opts Options) (*Output, error) {
	src, args, err := Render(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := writeFile(opts.Output, src); err != nil {
		return nil, &Error{Header: opts.Header, Err: err}
	}
	log.Infof("bindgen: %s -> %s", filepath.Base(opts.Header), opts.Output)
	return &Output{Path: opts.Output, Args: args}, nil
}

// writeFile replaces path with data through a temporary file in the same
// directory.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
