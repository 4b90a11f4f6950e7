package internal

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goplus/lwipbuild/internal/srcset"
	"github.com/goplus/lwipbuild/internal/testproj"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		sourcesExcluded = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// setTarget points the environment at a stand-in project built for os/arch.
func setTarget(t *testing.T, os, arch string) string {
	t.Helper()
	root := testproj.New(t)
	for _, k := range []string{"LWIPBUILD_TARGET", "LWIPBUILD_OUT_DIR", "LWIPBUILD_BINDINGS", "LWIPBUILD_DEBUG", "XCRUN"} {
		t.Setenv(k, "")
	}
	t.Setenv("LWIPBUILD_ROOT", root)
	t.Setenv("LWIPBUILD_TARGET_OS", os)
	t.Setenv("LWIPBUILD_TARGET_ARCH", arch)
	return root
}

func TestSources(t *testing.T) {
	setTarget(t, "linux", "amd64")
	out, err := execute(t, "sources")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "# lwIP >= v2.0.0, vendored v2.1.3" {
		t.Errorf("header = %q", lines[0])
	}
	units := srcset.LwIP.Units()
	if len(lines) != len(units)+1 {
		t.Fatalf("got %d units, want %d:\n%s", len(lines)-1, len(units), out)
	}
	for i, u := range units {
		if lines[i+1] != u.Path {
			t.Errorf("line %d = %q, want %q", i+1, lines[i+1], u.Path)
		}
	}
}

func TestSourcesExcluded(t *testing.T) {
	out, err := execute(t, "sources", "--excluded")
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range srcset.LwIP.Excluded {
		if !strings.Contains(out, u.Path+"\t# ") {
			t.Errorf("output lacks %s:\n%s", u.Path, out)
		}
	}
	if strings.Contains(out, "core/tcp.c") {
		t.Errorf("enabled unit listed as excluded:\n%s", out)
	}
}

func TestTarget(t *testing.T) {
	root := setTarget(t, "linux", "arm64")
	out, err := execute(t, "target")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"target:   arm64-linux\n",
		"triple:   aarch64-unknown-linux-gnu\n",
		"pointer:  64\n",
		"sdk:      none\n",
		"include:  " + filepath.Join(root, "custom") + "\n",
		"include:  " + filepath.Join(root, "lwip", "src", "include") + "\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "override:") {
		t.Errorf("linux target has an override:\n%s", out)
	}
}

func TestTargetMissingXcrun(t *testing.T) {
	setTarget(t, "darwin", "arm64")
	t.Setenv("XCRUN", filepath.Join(t.TempDir(), "xcrun"))
	if _, err := execute(t, "target"); err == nil {
		t.Fatal("target succeeded without xcrun")
	}
}

func TestStatusNotBuilt(t *testing.T) {
	setTarget(t, "linux", "amd64")
	_, err := execute(t, "status")
	if err == nil || !strings.Contains(err.Error(), "has not been built") {
		t.Fatalf("err = %v", err)
	}
}
