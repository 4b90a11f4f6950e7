package bindgen

import "github.com/goplus/lwipbuild/internal/target"

// Unit is the declaration surface of a parsed header, in source order.
// Every declaration records the file it was spelled in.
type Unit struct {
	Macros   []Macro
	Enums    []Enum
	Records  []Record
	Typedefs []Typedef
	Funcs    []Func
}

// Macro is an object-like #define.
type Macro struct {
	Name  string
	Value string
	File  string
}

// Enum is an enumeration. Name is empty for anonymous enums.
type Enum struct {
	Name   string
	Consts []string
	File   string
}

// Record is a named struct or union.
type Record struct {
	Kind string // "struct" or "union"
	Name string
	File string
}

// Typedef names a type. Type is the C spelling of the aliased type.
type Typedef struct {
	Name string
	Type string
	File string
}

// Func is a function prototype. Types are C spellings.
type Func struct {
	Name     string
	Result   string
	Params   []Param
	Variadic bool
	File     string
}

// Param is a function parameter. Name may be empty.
type Param struct {
	Name string
	Type string
}

// filter returns the part of u declared in files under dirs.
func (u *Unit) filter(dirs target.IncludePath) *Unit {
	out := new(Unit)
	for _, m := range u.Macros {
		if dirs.Contains(m.File) {
			out.Macros = append(out.Macros, m)
		}
	}
	for _, e := range u.Enums {
		if dirs.Contains(e.File) {
			out.Enums = append(out.Enums, e)
		}
	}
	for _, r := range u.Records {
		if dirs.Contains(r.File) {
			out.Records = append(out.Records, r)
		}
	}
	for _, td := range u.Typedefs {
		if dirs.Contains(td.File) {
			out.Typedefs = append(out.Typedefs, td)
		}
	}
	for _, f := range u.Funcs {
		if dirs.Contains(f.File) {
			out.Funcs = append(out.Funcs, f)
		}
	}
	return out
}

func (u *Unit) empty() bool {
	return len(u.Macros)+len(u.Enums)+len(u.Records)+len(u.Typedefs)+len(u.Funcs) == 0
}
