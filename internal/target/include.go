package target

import (
	"path/filepath"
	"slices"
	"strings"
)

// IncludePath is an ordered list of header search directories. The same
// value must be used to compile the archive and to parse headers for the
// bindings, otherwise struct layouts and constants can disagree.
type IncludePath struct {
	dirs []string
}

// NewIncludePath returns an IncludePath of dirs in order. Empty entries and
// duplicates (after filepath.Clean) are dropped, keeping the first occurrence.
func NewIncludePath(dirs ...string) IncludePath {
	var p IncludePath
	for _, d := range dirs {
		if d == "" {
			continue
		}
		d = filepath.Clean(d)
		if !slices.Contains(p.dirs, d) {
			p.dirs = append(p.dirs, d)
		}
	}
	return p
}

// Dirs returns a copy of the directories in search order.
func (p IncludePath) Dirs() []string {
	return slices.Clone(p.dirs)
}

// Len returns the number of directories.
func (p IncludePath) Len() int { return len(p.dirs) }

// Args returns one "-I<dir>" argument per directory.
func (p IncludePath) Args() []string {
	args := make([]string, len(p.dirs))
	for i, d := range p.dirs {
		args[i] = "-I" + d
	}
	return args
}

// Equal reports whether p and q list the same directories in the same order.
func (p IncludePath) Equal(q IncludePath) bool {
	return slices.Equal(p.dirs, q.dirs)
}

// Contains reports whether file lives below one of the directories.
func (p IncludePath) Contains(file string) bool {
	file = filepath.Clean(file)
	for _, d := range p.dirs {
		if file == d || strings.HasPrefix(file, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (p IncludePath) String() string {
	return strings.Join(p.dirs, string(filepath.ListSeparator))
}
