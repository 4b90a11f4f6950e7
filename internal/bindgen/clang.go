package bindgen

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goplus/lwipbuild/x/clang"
)

// FrontEnd parses a header with the given compiler arguments.
type FrontEnd interface {
	Parse(ctx context.Context, header string, args []string) (*Unit, error)
}

// Clang is a FrontEnd backed by the clang binary: declarations come from its
// JSON AST dump and macros from a -dD preprocessor run.
type Clang struct {
	*clang.Clang
}

// NewClang returns a Clang front end using the binary at path ("" for PATH).
func NewClang(path string) Clang {
	return Clang{clang.New(path)}
}

func (c Clang) Parse(ctx context.Context, header string, args []string) (*Unit, error) {
	ast, err := c.ASTDump(ctx, header, args...)
	if err != nil {
		return nil, err
	}
	u, err := decodeAST(ast)
	if err != nil {
		return nil, err
	}
	macros, err := c.Macros(ctx, header, args...)
	if err != nil {
		return nil, err
	}
	if u.Macros, err = decodeMacros(macros); err != nil {
		return nil, err
	}
	return u, nil
}

type astLoc struct {
	File         string  `json:"file"`
	SpellingLoc  *astLoc `json:"spellingLoc"`
	ExpansionLoc *astLoc `json:"expansionLoc"`
}

type astRange struct {
	Begin astLoc `json:"begin"`
	End   astLoc `json:"end"`
}

type astType struct {
	QualType string `json:"qualType"`
}

type astNode struct {
	Kind       string    `json:"kind"`
	Name       string    `json:"name"`
	Loc        *astLoc   `json:"loc"`
	Range      *astRange `json:"range"`
	IsImplicit bool      `json:"isImplicit"`
	Type       *astType  `json:"type"`
	TagUsed    string    `json:"tagUsed"`
	Variadic   bool      `json:"variadic"`
	Inner      []astNode `json:"inner"`
}

// fileTracker follows the current file through a dump. Clang only prints
// "file" when it differs from the previously printed location, so every
// location has to be visited in print order.
type fileTracker struct {
	file string
}

func (ft *fileTracker) bare(l *astLoc) {
	if l != nil && l.File != "" {
		ft.file = l.File
	}
}

func (ft *fileTracker) loc(l *astLoc) {
	if l == nil {
		return
	}
	if l.SpellingLoc != nil || l.ExpansionLoc != nil {
		ft.bare(l.SpellingLoc)
		ft.bare(l.ExpansionLoc)
		return
	}
	ft.bare(l)
}

// visit walks n and returns the file n itself is located in.
func (ft *fileTracker) visit(n *astNode) string {
	ft.loc(n.Loc)
	file := ft.file
	if n.Range != nil {
		ft.loc(&n.Range.Begin)
		ft.loc(&n.Range.End)
	}
	for i := range n.Inner {
		ft.visit(&n.Inner[i])
	}
	return file
}

func decodeAST(data []byte) (*Unit, error) {
	var root astNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode AST: %w", err)
	}
	if root.Kind != "TranslationUnitDecl" {
		return nil, fmt.Errorf("decode AST: unexpected root %q", root.Kind)
	}

	u := new(Unit)
	seen := make(map[string]bool)
	first := func(key string) bool {
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	}

	var ft fileTracker
	for i := range root.Inner {
		n := &root.Inner[i]
		file := ft.visit(n)
		if n.IsImplicit {
			continue
		}
		switch n.Kind {
		case "FunctionDecl":
			if n.Type == nil || !first("func "+n.Name) {
				continue
			}
			f := Func{Name: n.Name, Variadic: n.Variadic, File: file}
			qt := n.Type.QualType
			if j := strings.IndexByte(qt, '('); j >= 0 {
				f.Result = strings.TrimSpace(qt[:j])
			}
			for _, p := range n.Inner {
				if p.Kind == "ParmVarDecl" && p.Type != nil {
					f.Params = append(f.Params, Param{Name: p.Name, Type: p.Type.QualType})
				}
			}
			u.Funcs = append(u.Funcs, f)
		case "RecordDecl":
			if n.Name == "" || !first(n.TagUsed+" "+n.Name) {
				continue
			}
			u.Records = append(u.Records, Record{Kind: n.TagUsed, Name: n.Name, File: file})
		case "EnumDecl":
			var consts []string
			for _, c := range n.Inner {
				if c.Kind == "EnumConstantDecl" {
					consts = append(consts, c.Name)
				}
			}
			if n.Name != "" && !first("enum "+n.Name) {
				continue
			}
			u.Enums = append(u.Enums, Enum{Name: n.Name, Consts: consts, File: file})
		case "TypedefDecl":
			if n.Type == nil || !first("typedef "+n.Name) {
				continue
			}
			u.Typedefs = append(u.Typedefs, Typedef{Name: n.Name, Type: n.Type.QualType, File: file})
		}
	}
	return u, nil
}

// decodeMacros reads "clang -E -dD" output. Function-like macros are
// dropped; a redefinition moves the macro to its latest position.
func decodeMacros(data []byte) ([]Macro, error) {
	var macros []Macro
	remove := func(name string) {
		macros = slices.DeleteFunc(macros, func(m Macro) bool { return m.Name == name })
	}

	file := ""
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "# "):
			// # <line> "<file>" <flags>
			fields := strings.SplitN(line[2:], " ", 2)
			if len(fields) == 2 {
				file = lineMarkerFile(fields[1])
			}
		case strings.HasPrefix(line, "#define "):
			name, value, _ := strings.Cut(line[len("#define "):], " ")
			if strings.ContainsRune(name, '(') {
				continue
			}
			remove(name)
			macros = append(macros, Macro{Name: name, Value: strings.TrimSpace(value), File: file})
		case strings.HasPrefix(line, "#undef "):
			remove(strings.TrimSpace(line[len("#undef "):]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("decode macros: %w", err)
	}
	return macros, nil
}

func lineMarkerFile(s string) string {
	end := strings.LastIndexByte(s, '"')
	if !strings.HasPrefix(s, `"`) || end <= 0 {
		return ""
	}
	quoted := s[:end+1]
	if f, err := strconv.Unquote(quoted); err == nil {
		return f
	}
	return quoted[1 : len(quoted)-1]
}
