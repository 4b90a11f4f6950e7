// Package build runs the lwIP pipeline for one target: resolve the platform
// SDK, generate bindings, compile the archive and report build signals.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goplus/lwipbuild/internal/bindgen"
	"github.com/goplus/lwipbuild/internal/build/lockedfile"
	"github.com/goplus/lwipbuild/internal/compile"
	"github.com/goplus/lwipbuild/internal/env"
	"github.com/goplus/lwipbuild/internal/sdk"
	"github.com/goplus/lwipbuild/internal/srcset"
	"github.com/goplus/lwipbuild/internal/target"
	"github.com/goplus/lwipbuild/x/cc"
	"github.com/qiniu/x/log"
)

// Stage names a step of Run.
type Stage string

const (
	StageLock     Stage = "lock"
	StageResolve  Stage = "resolve"
	StageGenerate Stage = "generate"
	StageCompile  Stage = "compile"
	StageSignal   Stage = "signal"
)

// StageError reports the step a run stopped at.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Deps are the external tools a run uses.
type Deps struct {
	Locator   sdk.Locator
	Toolchain compile.Toolchain
	FrontEnd  bindgen.FrontEnd
	// Signals receives the build signals. Nil means os.Stdout.
	Signals io.Writer
}

// DefaultDeps returns the tools selected by cfg.
func DefaultDeps(cfg *env.Config) Deps {
	return Deps{
		Locator:   sdk.Xcrun(cfg.Xcrun),
		Toolchain: cc.New(cfg.CC, cfg.AR),
		FrontEnd:  bindgen.NewClang(cfg.Clang),
		Signals:   os.Stdout,
	}
}

// Result describes a successful run.
type Result struct {
	Includes target.IncludePath
	Artifact *compile.Artifact
	Bindings *bindgen.Output
	Signals  []Signal
}

// ProjectIncludes returns the project's own header directories.
func ProjectIncludes(root string) target.IncludePath {
	return Includes(root, "")
}

// Includes returns the header search path of a build: the glue headers, the
// lwIP public headers and, when sdkDir is set, the platform SDK headers.
func Includes(root, sdkDir string) target.IncludePath {
	return target.NewIncludePath(
		filepath.Join(root, "custom"),
		filepath.Join(root, "lwip", "src", "include"),
		sdkDir,
	)
}

// WrapperHeader returns the aggregator header under root.
func WrapperHeader(root string) string {
	return filepath.Join(root, "custom", "wrapper.h")
}

// generate writes the bindings while holding a lock in their directory, which
// other targets may share.
func generate(ctx context.Context, cfg *env.Config, includes target.IncludePath, fe bindgen.FrontEnd) (*bindgen.Output, error) {
	dir := filepath.Dir(cfg.Bindings)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	unlock, err := lockedfile.MutexAt(filepath.Join(dir, ".lwipbuild.lock")).Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	return bindgen.Generate(ctx, bindgen.Options{
		Header:   WrapperHeader(cfg.Root),
		Includes: includes,
		Allow:    ProjectIncludes(cfg.Root),
		Target:   cfg.Target,
		Output:   cfg.Bindings,
		FrontEnd: fe,
	})
}

// Run builds cfg.Target. The output directory is locked for the whole run and
// the bindings directory while the bindings are written.
// The first failing step aborts the run; outputs of earlier steps are kept.
func Run(ctx context.Context, cfg *env.Config, deps Deps) (*Result, error) {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, &StageError{StageLock, err}
	}
	unlock, err := lockedfile.MutexAt(filepath.Join(cfg.OutDir, ".lock")).Lock()
	if err != nil {
		return nil, &StageError{StageLock, err}
	}
	defer unlock()

	tg := cfg.Target
	log.Infof("build: %s (%s) in %s", tg, tg.Triple, cfg.Root)

	sdkDir, _, err := sdk.Resolve(ctx, tg, deps.Locator)
	if err != nil {
		return nil, &StageError{StageResolve, err}
	}
	includes := Includes(cfg.Root, sdkDir)
	log.Debugf("build: include path %s", includes)

	out, err := generate(ctx, cfg, includes, deps.FrontEnd)
	if err != nil {
		return nil, &StageError{StageGenerate, err}
	}

	art, err := compile.Compile(ctx, deps.Toolchain, &srcset.LwIP, includes, compile.Options{
		Root:     cfg.Root,
		OutDir:   cfg.OutDir,
		OptLevel: cfg.OptLevel,
		CFlags:   cfg.CFlags,
		Target:   tg,
	})
	if err != nil {
		return nil, &StageError{StageCompile, err}
	}

	rec := &Record{
		Target:    tg,
		LwIP:      art.Version,
		Includes:  includes.Dirs(),
		Archive:   art.Path,
		Bindings:  out.Path,
		BuildTime: time.Now(),
	}
	if err := saveRecord(cfg.OutDir, rec); err != nil {
		log.Warnf("build: save record: %v", err)
	}

	sigs := Signals(cfg.Root, cfg.OutDir)
	w := deps.Signals
	if w == nil {
		w = os.Stdout
	}
	if err := WriteSignals(w, sigs); err != nil {
		return nil, &StageError{StageSignal, err}
	}
	return &Result{Includes: includes, Artifact: art, Bindings: out, Signals: sigs}, nil
}
