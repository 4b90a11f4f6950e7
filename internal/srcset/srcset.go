// Package srcset holds the curated list of lwIP translation units that make
// up the archive.
//
// The list targets a tun2socks-style userspace stack: there is no Ethernet
// emulation, so the link layer, address resolution and address
// auto-configuration are left out along with name resolution, multicast group
// management and statistics counters. The glue units in custom/ assume this
// subset; an excluded unit must not be re-enabled without revisiting them.
package srcset

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

// Unit is one translation unit, relative to the project root using forward
// slashes.
type Unit struct {
	Path string
	// Reason explains an exclusion. Empty for enabled units.
	Reason string
}

// Set is a versioned list of translation units.
type Set struct {
	// MinVersion is the oldest lwIP release the list is valid for.
	MinVersion string
	// Stack lists enabled lwIP units in compile order.
	Stack []Unit
	// Excluded lists lwIP units deliberately left out.
	Excluded []Unit
	// Glue lists the custom platform units compiled after the stack.
	Glue []Unit
}

const (
	stackDir  = "lwip/src"
	customDir = "custom"
)

// LwIP is the curated source set.
var LwIP = Set{
	MinVersion: "v2.0.0",
	Stack: []Unit{
		{Path: stackDir + "/core/init.c"},
		{Path: stackDir + "/core/def.c"},
		{Path: stackDir + "/core/inet_chksum.c"},
		{Path: stackDir + "/core/ip.c"},
		{Path: stackDir + "/core/mem.c"},
		{Path: stackDir + "/core/memp.c"},
		{Path: stackDir + "/core/netif.c"},
		{Path: stackDir + "/core/pbuf.c"},
		{Path: stackDir + "/core/raw.c"},
		{Path: stackDir + "/core/tcp.c"},
		{Path: stackDir + "/core/tcp_in.c"},
		{Path: stackDir + "/core/tcp_out.c"},
		{Path: stackDir + "/core/timeouts.c"},
		{Path: stackDir + "/core/udp.c"},
		{Path: stackDir + "/core/ipv4/icmp.c"},
		{Path: stackDir + "/core/ipv4/ip4_frag.c"},
		{Path: stackDir + "/core/ipv4/ip4.c"},
		{Path: stackDir + "/core/ipv4/ip4_addr.c"},
		{Path: stackDir + "/core/ipv6/icmp6.c"},
		{Path: stackDir + "/core/ipv6/ip6.c"},
		{Path: stackDir + "/core/ipv6/ip6_addr.c"},
		{Path: stackDir + "/core/ipv6/ip6_frag.c"},
		{Path: stackDir + "/core/ipv6/nd6.c"},
	},
	Excluded: []Unit{
		{Path: stackDir + "/core/dns.c", Reason: "name resolution"},
		{Path: stackDir + "/core/stats.c", Reason: "statistics counters"},
		{Path: stackDir + "/core/sys.c", Reason: "replaced by custom/sys_arch.c"},
		{Path: stackDir + "/core/ipv4/autoip.c", Reason: "address auto-configuration"},
		{Path: stackDir + "/core/ipv4/dhcp.c", Reason: "address auto-configuration"},
		{Path: stackDir + "/core/ipv4/etharp.c", Reason: "address resolution, link layer"},
		{Path: stackDir + "/core/ipv4/igmp.c", Reason: "multicast group management"},
		{Path: stackDir + "/core/ipv6/dhcp6.c", Reason: "address auto-configuration"},
		{Path: stackDir + "/core/ipv6/ethip6.c", Reason: "link layer"},
		{Path: stackDir + "/core/ipv6/inet6.c", Reason: "raw inet6 helpers"},
		{Path: stackDir + "/core/ipv6/mld6.c", Reason: "multicast group management"},
	},
	Glue: []Unit{
		{Path: customDir + "/sys_arch.c"},
		{Path: customDir + "/mem.c"},
	},
}

// Units returns the units to compile: the stack followed by the glue.
func (s *Set) Units() []Unit {
	return slices.Concat(s.Stack, s.Glue)
}

// Validate checks that the list is well formed: no duplicates, no unit both
// enabled and excluded, and a valid MinVersion.
func (s *Set) Validate() error {
	if !semver.IsValid(s.MinVersion) {
		return fmt.Errorf("srcset: invalid minimum version %q", s.MinVersion)
	}
	seen := make(map[string]bool)
	for _, u := range slices.Concat(s.Stack, s.Glue, s.Excluded) {
		if seen[u.Path] {
			return fmt.Errorf("srcset: %s listed twice", u.Path)
		}
		seen[u.Path] = true
	}
	return nil
}

// Check verifies the tree at root against the set: every unit to compile must
// exist and the vendored lwIP must be at least MinVersion. It returns the
// vendored version.
func (s *Set) Check(root string) (version string, err error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	for _, u := range s.Units() {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(u.Path))); err != nil {
			return "", fmt.Errorf("srcset: missing unit: %w", err)
		}
	}
	ver, err := StackVersion(root)
	if err != nil {
		return "", err
	}
	if semver.Compare(ver, s.MinVersion) < 0 {
		return "", fmt.Errorf("srcset: vendored lwIP %s is older than %s", ver, s.MinVersion)
	}
	return ver, nil
}

var versionDefine = regexp.MustCompile(`^#define\s+LWIP_VERSION_(MAJOR|MINOR|REVISION)\s+(\d+)`)

// StackVersion reads the vendored lwIP release from lwip/init.h and returns
// it as a semantic version such as "v2.1.3".
func StackVersion(root string) (string, error) {
	path := filepath.Join(root, filepath.FromSlash(stackDir), "include", "lwip", "init.h")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("srcset: read lwIP version: %w", err)
	}
	parts := make(map[string]string, 3)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if m := versionDefine.FindStringSubmatch(strings.TrimSpace(sc.Text())); m != nil {
			parts[m[1]] = m[2]
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(parts) != 3 {
		return "", fmt.Errorf("srcset: %s: no LWIP_VERSION_MAJOR/MINOR/REVISION", path)
	}
	v := "v" + parts["MAJOR"] + "." + parts["MINOR"] + "." + parts["REVISION"]
	if !semver.IsValid(v) {
		return "", fmt.Errorf("srcset: %s: invalid version %s", path, v)
	}
	return v, nil
}
