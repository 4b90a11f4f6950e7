package build

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goplus/lwipbuild/internal/compile"
)

// Signal kinds.
const (
	KindLinkSearch     = "link-search"
	KindLinkLib        = "link-lib"
	KindRerunIfChanged = "rerun-if-changed"
	KindInclude        = "include"
)

const signalPrefix = "lwipbuild:"

// Signal is one line of build metadata for the consuming build system.
type Signal struct {
	Kind  string
	Value string
}

func (s Signal) String() string {
	return signalPrefix + s.Kind + "=" + s.Value
}

// ParseSignal parses a line written by WriteSignals.
func ParseSignal(line string) (Signal, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), signalPrefix)
	if !ok {
		return Signal{}, false
	}
	kind, value, ok := strings.Cut(rest, "=")
	if !ok || kind == "" {
		return Signal{}, false
	}
	return Signal{Kind: kind, Value: value}, true
}

// Signals returns the signals of a build of root into outDir, in order.
func Signals(root, outDir string) []Signal {
	return []Signal{
		{KindLinkSearch, outDir},
		{KindLinkLib, compile.LibName},
		{KindRerunIfChanged, filepath.Join(root, "lwip", "src")},
		{KindRerunIfChanged, filepath.Join(root, "custom")},
		{KindInclude, filepath.Join(root, "lwip", "src", "include")},
	}
}

// WriteSignals writes one signal per line.
func WriteSignals(w io.Writer, sigs []Signal) error {
	for _, s := range sigs {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}
