// Package testproj lays out a small stand-in for the vendored lwIP tree so
// the pipeline can be exercised without the real sources.
package testproj

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goplus/lwipbuild/internal/srcset"
)

// InitH is the version header of the stand-in tree.
const InitH = `#ifndef LWIP_HDR_INIT_H
#define LWIP_HDR_INIT_H

#define LWIP_VERSION_MAJOR      2
#define LWIP_VERSION_MINOR      1
#define LWIP_VERSION_REVISION   3
#define LWIP_VERSION_RC         255U

void lwip_init(void);

#endif
`

// PbufH declares a few types and functions for binding generation.
const PbufH = `#ifndef LWIP_HDR_PBUF_H
#define LWIP_HDR_PBUF_H

#include <stddef.h>
#include "lwip/arch.h"

#define PBUF_POOL_BUFSIZE 1514
#define PBUF_FLAG_PUSH 0x01U

typedef enum {
  PBUF_TRANSPORT = 74,
  PBUF_IP = 40,
  PBUF_RAW = 0
} pbuf_layer;

struct pbuf {
  struct pbuf *next;
  void *payload;
  u16_t tot_len;
  u16_t len;
};

struct pbuf *pbuf_alloc(pbuf_layer l, u16_t length);
u8_t pbuf_free(struct pbuf *p);
void *pbuf_get_contiguous(const struct pbuf *p, void *buffer, size_t bufsize, u16_t len, u16_t offset);
int lwip_printf(const char *fmt, ...);

#endif
`

// ArchH declares the fixed-width integer aliases lwIP uses.
const ArchH = `#ifndef LWIP_HDR_ARCH_H
#define LWIP_HDR_ARCH_H

#include <stdint.h>

typedef uint8_t u8_t;
typedef uint16_t u16_t;
typedef int8_t err_t;

#endif
`

// WrapperH is the aggregator header.
const WrapperH = `#include "lwip/init.h"
#include "lwip/pbuf.h"
`

// New creates a project root containing every unit of srcset.LwIP, including
// the excluded ones, plus the headers above. Each unit defines one function
// named after its path so a real compiler accepts it.
func New(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	set := srcset.LwIP
	for _, u := range append(set.Units(), set.Excluded...) {
		Write(t, root, u.Path, "int "+Symbol(u.Path)+"(void) { return 0; }\n")
	}
	Write(t, root, "lwip/src/include/lwip/init.h", InitH)
	Write(t, root, "lwip/src/include/lwip/pbuf.h", PbufH)
	Write(t, root, "lwip/src/include/lwip/arch.h", ArchH)
	Write(t, root, "custom/wrapper.h", WrapperH)
	Write(t, root, "custom/lwipopts.h", "#define NO_SYS 1\n")
	Write(t, root, "go.mod", "module example.com/tunnel\n\ngo 1.24\n")
	return root
}

// Write creates root/rel with content, making parent directories.
func Write(t testing.TB, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Symbol returns the function name defined by the stand-in unit at path.
func Symbol(path string) string {
	r := strings.NewReplacer("/", "_", ".", "_")
	return "unit_" + r.Replace(path)
}
