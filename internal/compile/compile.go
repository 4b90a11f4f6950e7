// Package compile builds the curated lwIP source set into a static archive.
package compile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goplus/lwipbuild/internal/srcset"
	"github.com/goplus/lwipbuild/internal/target"
	"github.com/qiniu/x/log"
)

// LibName is the link name of the archive.
const LibName = "lwip"

// Toolchain compiles single units and packs objects into an archive.
// *cc.CC implements it.
type Toolchain interface {
	Compile(ctx context.Context, src, obj string, args ...string) error
	Archive(ctx context.Context, lib string, objs ...string) error
	Supports(ctx context.Context, dir, flag string) bool
}

// Options configures a compilation.
type Options struct {
	// Root is the project root the source set is relative to.
	Root string
	// OutDir receives objects and the archive.
	OutDir string
	// OptLevel is passed as -O<OptLevel>. Empty means "0".
	OptLevel string
	// CFlags are appended after the generated flags.
	CFlags []string
	Target target.Target
	// Host is the machine the compiler runs on. The zero value means the
	// current one.
	Host target.Target
}

// Artifact is the archive produced by Compile.
type Artifact struct {
	// Name is the link name, as in -l<Name>.
	Name string
	// Path is the archive file.
	Path string
	// Objects lists the archived objects in link order.
	Objects []string
	// Version is the vendored lwIP release that was compiled.
	Version string
}

// Error reports a unit that failed to compile.
type Error struct {
	File string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("compile %s: %v", e.File, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ArchivePath returns the archive location under outDir.
func ArchivePath(outDir string) string {
	return filepath.Join(outDir, "lib"+LibName+".a")
}

// Args returns the flags every unit is compiled with. Debug information is
// always kept and warnings are always silenced, whatever the build profile.
// A target other than the host is passed to the compiler as --target, so a
// cross build needs a clang-family compiler or a CC that ignores it.
func Args(ctx context.Context, tc Toolchain, includes target.IncludePath, opts Options) []string {
	opt := opts.OptLevel
	if opt == "" {
		opt = "0"
	}
	args := []string{"-g", "-O" + opt, "-w"}
	if cross(opts) {
		args = append(args, "--target="+opts.Target.Triple)
	}
	if tc.Supports(ctx, opts.OutDir, "-Wno-everything") {
		args = append(args, "-Wno-everything")
	}
	if opts.Target.OS != "windows" {
		args = append(args, "-fPIC")
	}
	args = append(args, includes.Args()...)
	return append(args, opts.CFlags...)
}

// cross reports whether opts.Target is set and is not the host.
func cross(opts Options) bool {
	if opts.Target.Triple == "" {
		return false
	}
	host := opts.Host
	if host == (target.Target{}) {
		host = target.New(runtime.GOOS, runtime.GOARCH, "")
	}
	return opts.Target.OS != host.OS || opts.Target.Arch != host.Arch
}

// Compile compiles every unit of set with includes and archives the objects.
// The archive is replaced only when every step succeeds.
func Compile(ctx context.Context, tc Toolchain, set *srcset.Set, includes target.IncludePath, opts Options) (*Artifact, error) {
	version, err := set.Check(opts.Root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, err
	}
	args := Args(ctx, tc, includes, opts)

	units := set.Units()
	objs := make([]string, 0, len(units))
	for _, u := range units {
		src := filepath.Join(opts.Root, filepath.FromSlash(u.Path))
		obj := filepath.Join(opts.OutDir, "obj", filepath.FromSlash(strings.TrimSuffix(u.Path, ".c")+".o"))
		log.Debugf("compile: %s", u.Path)
		if err := tc.Compile(ctx, src, obj, args...); err != nil {
			return nil, &Error{File: u.Path, Err: err}
		}
		objs = append(objs, obj)
	}

	lib := ArchivePath(opts.OutDir)
	tmp := lib + ".tmp"
	if err := tc.Archive(ctx, tmp, objs...); err != nil {
		os.Remove(tmp)
		return nil, &Error{File: filepath.Base(lib), Err: err}
	}
	if err := os.Rename(tmp, lib); err != nil {
		os.Remove(tmp)
		return nil, err
	}
	log.Infof("compile: %d units -> %s", len(objs), lib)
	return &Artifact{Name: LibName, Path: lib, Objects: objs, Version: version}, nil
}
