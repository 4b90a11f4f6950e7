package bindgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeAST(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "pbuf.ast.json"))
	if err != nil {
		t.Fatal(err)
	}
	u, err := decodeAST(data)
	if err != nil {
		t.Fatal(err)
	}

	const (
		stdint = "/sdk/usr/include/stdint.h"
		arch   = "/proj/lwip/src/include/lwip/arch.h"
		pbuf   = "/proj/lwip/src/include/lwip/pbuf.h"
	)
	want := &Unit{
		Enums:   []Enum{{Consts: []string{"PBUF_TRANSPORT", "PBUF_IP"}, File: pbuf}},
		Records: []Record{{Kind: "struct", Name: "pbuf", File: pbuf}},
		Typedefs: []Typedef{
			{Name: "uint8_t", Type: "unsigned char", File: stdint},
			{Name: "uint16_t", Type: "unsigned short", File: stdint},
			{Name: "u8_t", Type: "uint8_t", File: arch},
			{Name: "u16_t", Type: "uint16_t", File: arch},
			{Name: "pbuf_layer", Type: "pbuf_layer", File: pbuf},
		},
		Funcs: []Func{
			{
				Name:   "pbuf_alloc",
				Result: "struct pbuf *",
				Params: []Param{{"l", "pbuf_layer"}, {"length", "u16_t"}},
				File:   pbuf,
			},
			{
				Name:     "lwip_printf",
				Result:   "int",
				Params:   []Param{{"fmt", "const char *"}},
				Variadic: true,
				File:     pbuf,
			},
			{
				Name:   "pbuf_free",
				Result: "u8_t",
				Params: []Param{{"p", "struct pbuf *"}},
				File:   pbuf,
			},
		},
	}
	if diff := cmp.Diff(want, u); diff != "" {
		t.Errorf("decodeAST mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeASTErrors(t *testing.T) {
	for _, data := range []string{
		``,
		`{"kind": "TranslationUnitDecl", "inner": [}`,
		`{"kind": "FunctionDecl"}`,
	} {
		if _, err := decodeAST([]byte(data)); err == nil {
			t.Errorf("decodeAST(%q) succeeded", data)
		}
	}
}

func TestDecodeMacros(t *testing.T) {
	out := `# 1 "/proj/custom/wrapper.h"
# 1 "<built-in>" 1
#define __STDC__ 1
#define __SIZE_TYPE__ long unsigned int
# 1 "<command line>" 1
# 1 "/proj/custom/wrapper.h" 2
# 1 "/proj/lwip/src/include/lwip/pbuf.h" 1
#define LWIP_HDR_PBUF_H 
#define PBUF_POOL_BUFSIZE 1514
#define PBUF_FLAG_PUSH 0x01U
#define PBUF_IS_POOL(p) ((p)->type == 3)
#define TEMP 1
#undef TEMP
# 1 "/proj/custom/lwipopts.h" 1
#define NO_SYS 1
# 20 "/proj/lwip/src/include/lwip/pbuf.h" 2
#define PBUF_POOL_BUFSIZE 1600
struct pbuf;
`
	got, err := decodeMacros([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	const pbuf = "/proj/lwip/src/include/lwip/pbuf.h"
	want := []Macro{
		{Name: "__STDC__", Value: "1", File: "<built-in>"},
		{Name: "__SIZE_TYPE__", Value: "long unsigned int", File: "<built-in>"},
		{Name: "LWIP_HDR_PBUF_H", File: pbuf},
		{Name: "PBUF_FLAG_PUSH", Value: "0x01U", File: pbuf},
		{Name: "NO_SYS", Value: "1", File: "/proj/custom/lwipopts.h"},
		{Name: "PBUF_POOL_BUFSIZE", Value: "1600", File: pbuf},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decodeMacros mismatch (-want +got):\n%s", diff)
	}
}

func TestLineMarkerFile(t *testing.T) {
	for in, want := range map[string]string{
		`"/a/b.h" 1`:       "/a/b.h",
		`"<built-in>"`:     "<built-in>",
		`"C:\\x\\y.h" 2`:   `C:\x\y.h`,
		`noquote`:          "",
		`"unterminated`:    "",
		`"/a b/c.h" 1 3 4`: "/a b/c.h",
	} {
		if got := lineMarkerFile(in); got != want {
			t.Errorf("lineMarkerFile(%q) = %q, want %q", in, got, want)
		}
	}
}
