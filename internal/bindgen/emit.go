package bindgen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"
	"unicode"
)

// cgoBuiltins maps C spellings of builtin types to their cgo names.
var cgoBuiltins = map[string]string{
	"char":                   "C.char",
	"signed char":            "C.schar",
	"unsigned char":          "C.uchar",
	"short":                  "C.short",
	"short int":              "C.short",
	"unsigned short":         "C.ushort",
	"unsigned short int":     "C.ushort",
	"int":                    "C.int",
	"signed":                 "C.int",
	"signed int":             "C.int",
	"unsigned":               "C.uint",
	"unsigned int":           "C.uint",
	"long":                   "C.long",
	"long int":               "C.long",
	"unsigned long":          "C.ulong",
	"unsigned long int":      "C.ulong",
	"long long":              "C.longlong",
	"long long int":          "C.longlong",
	"unsigned long long":     "C.ulonglong",
	"unsigned long long int": "C.ulonglong",
	"float":                  "C.float",
	"double":                 "C.double",
}

// unsupported lists types cgo cannot pass through a plain wrapper.
var unsupported = map[string]bool{
	"_Bool":       true,
	"bool":        true,
	"long double": true,
	"__int128":    true,
}

// goType is the Go rendering of a C type in a wrapper signature.
type goType struct {
	Go string
	// Conv, when set, is the C type a Go value must be converted to before
	// it is passed to C.
	Conv string
	// Unsafe reports that Go refers to unsafe.Pointer.
	Unsafe bool
}

type emitter struct {
	pkg    string
	header string
	triple string
	sizeT  string

	names   map[string]bool
	aliases map[string]string // C spelling -> Go name

	usesUnsafe bool
	body       bytes.Buffer
}

func newEmitter(pkg, header, triple string, pointerSize int) *emitter {
	return &emitter{
		pkg:     pkg,
		header:  header,
		triple:  triple,
		sizeT:   "uint" + strconv.Itoa(pointerSize),
		names:   map[string]bool{"C": true, "unsafe": true},
		aliases: make(map[string]string),
	}
}

// emit renders u as a gofmt'd cgo source file.
func (e *emitter) emit(u *Unit) ([]byte, error) {
	e.consts(u)
	e.types(u)
	e.funcs(u)

	var out bytes.Buffer
	fmt.Fprintf(&out, "// Code generated by lwipbuild from %s for %s; DO NOT EDIT.\n\n", e.header, e.triple)
	fmt.Fprintf(&out, "package %s\n\n", e.pkg)
	fmt.Fprintf(&out, "/*\n#cgo LDFLAGS: -llwip\n#include %q\n*/\nimport \"C\"\n\n", e.header)
	if e.usesUnsafe {
		out.WriteString("import \"unsafe\"\n\n")
	}
	out.Write(e.body.Bytes())
	return format.Source(out.Bytes())
}

func (e *emitter) consts(u *Unit) {
	var lits []string
	for _, m := range u.Macros {
		v, ok := macroLiteral(m.Value)
		if !ok || !token.IsExported(m.Name) || !token.IsIdentifier(m.Name) || e.names[m.Name] {
			continue
		}
		e.names[m.Name] = true
		lits = append(lits, fmt.Sprintf("\t%s = %s\n", m.Name, v))
	}
	e.block("const", lits)

	var enums []string
	for _, en := range u.Enums {
		for _, c := range en.Consts {
			name := e.reserve(c, "Const")
			enums = append(enums, fmt.Sprintf("\t%s = C.%s\n", name, c))
		}
	}
	e.block("const", enums)
}

func (e *emitter) types(u *Unit) {
	var specs []string
	for _, r := range u.Records {
		name := e.reserve(r.Name, camel(r.Kind))
		e.aliases[r.Kind+" "+r.Name] = name
		specs = append(specs, fmt.Sprintf("\t%s = C.%s_%s\n", name, r.Kind, r.Name))
	}
	for _, en := range u.Enums {
		if en.Name == "" {
			continue
		}
		name := e.reserve(en.Name, "Enum")
		e.aliases["enum "+en.Name] = name
		specs = append(specs, fmt.Sprintf("\t%s = C.enum_%s\n", name, en.Name))
	}
	for _, td := range u.Typedefs {
		name := e.reserve(td.Name, "Type")
		e.aliases[td.Name] = name
		specs = append(specs, fmt.Sprintf("\t%s = C.%s\n", name, td.Name))
	}
	e.block("type", specs)
}

func (e *emitter) funcs(u *Unit) {
	for _, f := range u.Funcs {
		if f.Variadic || strings.HasPrefix(f.Name, "_") {
			continue
		}
		e.wrapper(f)
	}
}

// wrapper emits a Go function calling f. Functions with a type the wrapper
// cannot express are skipped.
func (e *emitter) wrapper(f Func) {
	res, ok := e.goType(f.Result)
	if !ok {
		return
	}
	needsUnsafe := res.Unsafe
	var params, args []string
	// A single void parameter means no parameters.
	if len(f.Params) != 1 || stripQualifiers(f.Params[0].Type) != "void" {
		for i, p := range f.Params {
			t, ok := e.goType(p.Type)
			if !ok {
				return
			}
			needsUnsafe = needsUnsafe || t.Unsafe
			name := paramName(p.Name, i)
			params = append(params, name+" "+t.Go)
			if t.Conv != "" {
				name = t.Conv + "(" + name + ")"
			}
			args = append(args, name)
		}
	}

	e.usesUnsafe = e.usesUnsafe || needsUnsafe
	name := e.reserve(f.Name, "Func")
	call := fmt.Sprintf("C.%s(%s)", f.Name, strings.Join(args, ", "))
	fmt.Fprintf(&e.body, "func %s(%s) %s{\n", name, strings.Join(params, ", "), withSpace(res.Go))
	switch {
	case res.Go == "":
		fmt.Fprintf(&e.body, "\t%s\n", call)
	case res.Conv != "":
		fmt.Fprintf(&e.body, "\treturn %s(%s)\n", res.Go, call)
	default:
		fmt.Fprintf(&e.body, "\treturn %s\n", call)
	}
	e.body.WriteString("}\n\n")
}

func (e *emitter) block(kw string, specs []string) {
	if len(specs) == 0 {
		return
	}
	fmt.Fprintf(&e.body, "%s (\n", kw)
	for _, s := range specs {
		e.body.WriteString(s)
	}
	e.body.WriteString(")\n\n")
}

// reserve returns an unused exported Go name for the C identifier cname.
func (e *emitter) reserve(cname, prefix string) string {
	name := cname
	if !token.IsExported(name) {
		name = camel(cname)
	}
	if name == "" {
		name = prefix
	}
	if e.names[name] {
		name = prefix + name
	}
	base := name
	for i := 2; e.names[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	e.names[name] = true
	return name
}

// goType maps a C type spelling to the Go type of a wrapper parameter or
// result. size_t is rendered as a fixed-width integer of the target's word
// size. ok is false for types a wrapper cannot express.
func (e *emitter) goType(c string) (t goType, ok bool) {
	c = stripQualifiers(c)
	if strings.ContainsAny(c, "()[]") {
		return t, false
	}
	ptrs := 0
	for strings.HasSuffix(c, "*") {
		ptrs++
		c = stripQualifiers(strings.TrimSuffix(c, "*"))
	}
	stars := strings.Repeat("*", ptrs)

	switch {
	case c == "void" && ptrs == 0:
		return goType{}, true
	case c == "void":
		return goType{Go: stars[1:] + "unsafe.Pointer", Unsafe: true}, true
	case c == "size_t" && ptrs == 0:
		return goType{Go: e.sizeT, Conv: "C.size_t"}, true
	case unsupported[c]:
		return t, false
	}
	if alias, ok := e.aliases[c]; ok {
		return goType{Go: stars + alias}, true
	}
	if b, ok := cgoBuiltins[c]; ok {
		return goType{Go: stars + b}, true
	}
	for _, tag := range []string{"struct", "union", "enum"} {
		if name, ok := strings.CutPrefix(c, tag+" "); ok && token.IsIdentifier(name) {
			return goType{Go: stars + "C." + tag + "_" + name}, true
		}
	}
	if token.IsIdentifier(c) {
		return goType{Go: stars + "C." + c}, true
	}
	return t, false
}

var qualifiers = []string{"const", "volatile", "restrict", "__restrict"}

// stripQualifiers drops type qualifiers from the outermost level of c.
func stripQualifiers(c string) string {
	c = strings.TrimSpace(c)
	for changed := true; changed; {
		changed = false
		for _, q := range qualifiers {
			if s, ok := strings.CutPrefix(c, q+" "); ok {
				c, changed = strings.TrimSpace(s), true
			}
			// "T const" and "T *const"
			if s, ok := strings.CutSuffix(c, q); ok && (strings.HasSuffix(s, " ") || strings.HasSuffix(s, "*")) {
				c, changed = strings.TrimSpace(s), true
			}
		}
	}
	return c
}

// macroLiteral returns the Go form of an integer or string macro value.
func macroLiteral(v string) (string, bool) {
	v = strings.TrimSpace(v)
	for len(v) >= 2 && v[0] == '(' && v[len(v)-1] == ')' && !strings.ContainsAny(v[1:len(v)-1], "()") {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	if strings.HasPrefix(v, `"`) {
		s, err := strconv.Unquote(v)
		if err != nil {
			return "", false
		}
		return strconv.Quote(s), true
	}
	sign := ""
	if rest, ok := strings.CutPrefix(v, "-"); ok {
		sign, v = "-", strings.TrimSpace(rest)
	}
	v = strings.TrimRight(v, "uUlL")
	if v == "" {
		return "", false
	}
	if _, err := strconv.ParseUint(v, 0, 64); err != nil {
		return "", false
	}
	return sign + v, true
}

// camel converts a C snake_case identifier to an exported Go name:
// tcp_bind -> TcpBind, ip4_addr_t -> Ip4AddrT.
func camel(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

func paramName(name string, i int) string {
	switch {
	case name == "":
		return "arg" + strconv.Itoa(i)
	case token.Lookup(name).IsKeyword(), name == "C", name == "unsafe":
		return name + "_"
	}
	return name
}

func withSpace(s string) string {
	if s == "" {
		return ""
	}
	return s + " "
}
