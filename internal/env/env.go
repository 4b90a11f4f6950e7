// Package env reads the build configuration from the process environment.
// It is read once per run; every other package receives the result.
package env

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/goplus/lwipbuild/internal/target"
	"golang.org/x/mod/modfile"
)

// Config is the configuration of one build.
type Config struct {
	Target target.Target
	// Root is the project root holding lwip/ and custom/.
	Root string
	// Module is the module path declared by Root's go.mod, if any.
	Module string
	// OutDir receives the archive. Defaults to Root/build/<arch-os>.
	OutDir string
	// Bindings is the generated binding file. Defaults to BindingsPath.
	Bindings string
	OptLevel string
	Debug    bool

	CC     string
	AR     string
	Clang  string
	Xcrun  string
	CFlags []string
}

// ErrNoRoot is returned when no project root is configured or found.
var ErrNoRoot = errors.New("env: no go.mod found; set LWIPBUILD_ROOT")

func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func first(keys ...string) string {
	for _, k := range keys {
		if v := clean(k); v != "" {
			return v
		}
	}
	return ""
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	goos := first("LWIPBUILD_TARGET_OS", "GOOS")
	if goos == "" {
		goos = runtime.GOOS
	}
	goarch := first("LWIPBUILD_TARGET_ARCH", "GOARCH")
	if goarch == "" {
		goarch = runtime.GOARCH
	}

	cfg := &Config{
		Target:   target.New(goos, goarch, clean("LWIPBUILD_TARGET")),
		OptLevel: clean("LWIPBUILD_OPT_LEVEL"),
		CC:       clean("CC"),
		AR:       clean("AR"),
		Clang:    clean("CLANG"),
		Xcrun:    clean("XCRUN"),
	}
	if flags := strings.Fields(os.Getenv("CFLAGS")); len(flags) > 0 {
		cfg.CFlags = flags
	}
	if cfg.OptLevel == "" {
		cfg.OptLevel = "2"
	}
	if s := clean("LWIPBUILD_DEBUG"); s != "" {
		d, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("env: LWIPBUILD_DEBUG: %w", err)
		}
		cfg.Debug = d
	}

	root := clean("LWIPBUILD_ROOT")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if root = FindRoot(wd); root == "" {
			return nil, ErrNoRoot
		}
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cfg.Root = root
	if cfg.Module, err = ModulePath(root); err != nil {
		return nil, err
	}

	cfg.OutDir = clean("LWIPBUILD_OUT_DIR")
	if cfg.OutDir == "" {
		cfg.OutDir = filepath.Join(root, "build", cfg.Target.String())
	}
	cfg.Bindings = clean("LWIPBUILD_BINDINGS")
	if cfg.Bindings == "" {
		cfg.Bindings = BindingsPath(root, cfg.Target)
	}
	return cfg, nil
}

// BindingsDir is the package directory of generated bindings, kept apart
// from the vendored lwip/ tree.
const BindingsDir = "lwipbind"

// BindingsPath returns the default binding file of tg under root. The
// _<os>_<arch> suffix gives every target its own file and lets the go tool
// pick the right one.
func BindingsPath(root string, tg target.Target) string {
	return filepath.Join(root, BindingsDir, "lwip_"+tg.OS+"_"+tg.Arch+".go")
}

// FindRoot returns the nearest directory at or above dir holding a go.mod,
// or "" if there is none.
func FindRoot(dir string) string {
	dir = filepath.Clean(dir)
	for {
		if fi, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !fi.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ModulePath returns the module path declared in root/go.mod. A missing
// go.mod yields "".
func ModulePath(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("env: %s/go.mod has no module directive", root)
	}
	return path, nil
}
