package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/goplus/lwipbuild/internal/bindgen"
)

// mockLocator answers SDK queries from a fixed table.
type mockLocator struct {
	paths    map[string]string
	variants []string
}

func (m *mockLocator) SDKPath(ctx context.Context, variant string) (string, error) {
	m.variants = append(m.variants, variant)
	p, ok := m.paths[variant]
	if !ok {
		return "", errors.New("xcrun: error: SDK " + variant + " cannot be located")
	}
	return p, nil
}

func newMockLocator() *mockLocator {
	return &mockLocator{paths: map[string]string{
		"iphoneos":        "/sdk/iPhoneOS.sdk",
		"iphonesimulator": "/sdk/iPhoneSimulator.sdk",
		"macosx":          "/sdk/MacOSX.sdk",
	}}
}

// mockToolchain records compiler flags and writes placeholder outputs.
type mockToolchain struct {
	sources []string
	args    []string
	failOn  string
}

func (m *mockToolchain) Compile(ctx context.Context, src, obj string, args ...string) error {
	if m.failOn != "" && strings.HasSuffix(filepath.ToSlash(src), m.failOn) {
		return errors.New("error: unknown type name 'sys_prot_t'")
	}
	m.sources = append(m.sources, src)
	m.args = args
	if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
		return err
	}
	return os.WriteFile(obj, nil, 0o644)
}

func (m *mockToolchain) Archive(ctx context.Context, lib string, objs ...string) error {
	return os.WriteFile(lib, []byte("!<arch>\n"), 0o644)
}

func (m *mockToolchain) Supports(ctx context.Context, dir, flag string) bool {
	return true
}

// mockFrontEnd returns a small unit located in the project's headers.
type mockFrontEnd struct {
	root string
	args []string
}

func (m *mockFrontEnd) Parse(ctx context.Context, header string, args []string) (*bindgen.Unit, error) {
	m.args = args
	pbuf := filepath.Join(m.root, "lwip", "src", "include", "lwip", "pbuf.h")
	return &bindgen.Unit{
		Macros:  []bindgen.Macro{{Name: "PBUF_POOL_BUFSIZE", Value: "1514", File: pbuf}},
		Records: []bindgen.Record{{Kind: "struct", Name: "pbuf", File: pbuf}},
		Funcs: []bindgen.Func{
			{Name: "pbuf_free", Result: "unsigned char", Params: []bindgen.Param{{Name: "p", Type: "struct pbuf *"}}, File: pbuf},
			{Name: "pbuf_take", Result: "int", Params: []bindgen.Param{{Name: "p", Type: "struct pbuf *"}, {Name: "len", Type: "size_t"}}, File: pbuf},
		},
		Typedefs: []bindgen.Typedef{{Name: "uint8_t", Type: "unsigned char", File: "/sdk/MacOSX.sdk/usr/include/stdint.h"}},
	}, nil
}

// includeArgs returns the -I flags of args in order.
func includeArgs(args []string) []string {
	var out []string
	for _, a := range args {
		if strings.HasPrefix(a, "-I") {
			out = append(out, a)
		}
	}
	return out
}
