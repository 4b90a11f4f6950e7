// Package target describes the platform a build produces code for.
package target

import (
	"fmt"
	"strings"
)

// Target identifies the platform being built for. OS and Arch use Go names
// (GOOS/GOARCH), Triple is an LLVM-style target triple.
type Target struct {
	OS     string
	Arch   string
	Triple string
}

// New returns a Target for os/arch. An empty triple is derived with
// DefaultTriple.
func New(os, arch, triple string) Target {
	if triple == "" {
		triple = DefaultTriple(os, arch)
	}
	return Target{OS: os, Arch: arch, Triple: triple}
}

// String returns the "arch-os" key of the target, the same shape the
// build matrix uses for per-target directories.
func (t Target) String() string {
	return t.Arch + "-" + t.OS
}

// TripleArch returns the architecture component of the triple.
func (t Target) TripleArch() string {
	arch, _, _ := strings.Cut(t.Triple, "-")
	return arch
}

// IsSimulator reports whether the triple names an iOS simulator build:
// plain x86_64 iOS, or an x86_64/arm64 triple carrying a "sim"/"simulator"
// environment. Other environments such as macabi are not simulators.
func (t Target) IsSimulator() bool {
	if t.OS != "ios" {
		return false
	}
	parts := strings.Split(t.Triple, "-")
	last := parts[len(parts)-1]
	simEnv := len(parts) >= 4 && (last == "sim" || last == "simulator")
	switch parts[0] {
	case "x86_64":
		return len(parts) == 3 || simEnv
	case "aarch64", "arm64":
		return simEnv
	}
	return false
}

var pointerSizes = map[string]int{
	"386":      32,
	"amd64":    64,
	"arm":      32,
	"arm64":    64,
	"loong64":  64,
	"mips":     32,
	"mipsle":   32,
	"mips64":   64,
	"mips64le": 64,
	"ppc64":    64,
	"ppc64le":  64,
	"riscv64":  64,
	"s390x":    64,
	"wasm":     32,
}

// PointerSize returns the width in bits of a pointer on the target.
// It never consults the host machine.
func (t Target) PointerSize() (int, error) {
	if n, ok := pointerSizes[t.Arch]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("target: unknown architecture %q", t.Arch)
}

var llvmArchs = map[string]string{
	"386":      "i686",
	"amd64":    "x86_64",
	"arm":      "armv7",
	"arm64":    "aarch64",
	"loong64":  "loongarch64",
	"mips":     "mips",
	"mipsle":   "mipsel",
	"mips64":   "mips64",
	"mips64le": "mips64el",
	"ppc64":    "powerpc64",
	"ppc64le":  "powerpc64le",
	"riscv64":  "riscv64",
	"s390x":    "s390x",
	"wasm":     "wasm32",
}

// DefaultTriple derives a triple from Go os/arch names. iOS on amd64 is
// always a simulator; an arm64 simulator must be requested with an explicit
// triple.
func DefaultTriple(os, arch string) string {
	a, ok := llvmArchs[arch]
	if !ok {
		a = arch
	}
	switch os {
	case "darwin":
		return a + "-apple-darwin"
	case "ios":
		if arch == "amd64" {
			return a + "-apple-ios-simulator"
		}
		return a + "-apple-ios"
	case "linux":
		return a + "-unknown-linux-gnu"
	case "android":
		return a + "-linux-android"
	case "windows":
		if arch == "386" || arch == "amd64" {
			return a + "-pc-windows-gnu"
		}
		return a + "-w64-windows-gnu"
	default:
		return a + "-unknown-" + os
	}
}
