// Copyright (c) 2026 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package kontextgen

import (
	"fmt"
	"go/token"
	"path"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/kontext"
)

// importSet assigns package names to the import paths used by generated
// source.
type importSet struct {
	byPath map[string]string
	used   map[string]bool
}

func newImportSet(reserved ...string) *importSet {
	s := &importSet{
		byPath: make(map[string]string),
		used:   make(map[string]bool),
	}
	for _, r := range reserved {
		s.used[r] = true
	}
	return s
}

// add returns the name under which importPath is referenced.
func (s *importSet) add(importPath string) string {
	if name, ok := s.byPath[importPath]; ok {
		return name
	}

	base := packageName(importPath)
	name := base
	for i := 2; s.used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	s.byPath[importPath] = name
	s.used[name] = true
	return name
}

// specs returns the import specs in path order.
func (s *importSet) specs() []string {
	paths := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	specs := make([]string, len(paths))
	for i, p := range paths {
		if name := s.byPath[p]; name != path.Base(p) {
			specs[i] = fmt.Sprintf("%s %q", name, p)
		} else {
			specs[i] = strconv.Quote(p)
		}
	}
	return specs
}

// packageName guesses the package name of an import path, skipping major
// version suffixes.
func packageName(importPath string) string {
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' && isDigits(base[1:]) && path.Dir(importPath) != "." {
		base = path.Base(path.Dir(importPath))
	}
	base = strings.TrimPrefix(base, "go-")

	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	name := sb.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') || token.Lookup(name).IsKeyword() {
		name = "pkg_" + name
	}
	return name
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// typeString renders t as Go source, importing the packages it refers to.
func (s *importSet) typeString(t reflect.Type) (string, error) {
	if t.Name() != "" {
		return s.namedType(t)
	}

	switch t.Kind() {
	case reflect.Ptr:
		elem, err := s.typeString(t.Elem())
		return "*" + elem, err
	case reflect.Slice:
		elem, err := s.typeString(t.Elem())
		return "[]" + elem, err
	case reflect.Array:
		elem, err := s.typeString(t.Elem())
		return fmt.Sprintf("[%d]%s", t.Len(), elem), err
	case reflect.Map:
		key, err := s.typeString(t.Key())
		if err != nil {
			return "", err
		}
		elem, err := s.typeString(t.Elem())
		return "map[" + key + "]" + elem, err
	case reflect.Chan:
		elem, err := s.typeString(t.Elem())
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + elem, err
		case reflect.SendDir:
			return "chan<- " + elem, err
		}
		if t.Elem().Kind() == reflect.Chan && t.Elem().ChanDir() == reflect.RecvDir {
			elem = "(" + elem + ")"
		}
		return "chan " + elem, err
	case reflect.Func:
		sig, err := s.signature(t, nil, nil)
		return "func" + sig, err
	case reflect.Interface:
		return s.interfaceType(t)
	case reflect.Struct:
		return s.structType(t)
	}
	return "", fmt.Errorf("can't render type %v", t)
}

func (s *importSet) namedType(t reflect.Type) (string, error) {
	if t.PkgPath() == "" {
		// Predeclared types such as int and error.
		return t.Name(), nil
	}
	if strings.ContainsRune(t.Name(), '[') {
		return "", fmt.Errorf("%w: generic type %v can't be rendered", kontext.ErrProxyImpossible, kontext.TypeName(t))
	}
	if !token.IsExported(t.Name()) {
		return "", fmt.Errorf("%w: %v is not exported", kontext.ErrProxyImpossible, kontext.TypeName(t))
	}
	return s.add(t.PkgPath()) + "." + t.Name(), nil
}

func (s *importSet) interfaceType(t reflect.Type) (string, error) {
	if t.NumMethod() == 0 {
		return "interface{}", nil
	}

	methods := make([]string, t.NumMethod())
	for i := range methods {
		m := t.Method(i)
		if m.PkgPath != "" {
			return "", fmt.Errorf("%w: interface %v has unexported method %v",
				kontext.ErrProxyImpossible, t, m.Name)
		}
		sig, err := s.signature(m.Type, nil, nil)
		if err != nil {
			return "", err
		}
		methods[i] = m.Name + sig
	}
	return "interface{ " + strings.Join(methods, "; ") + " }", nil
}

func (s *importSet) structType(t reflect.Type) (string, error) {
	if t.NumField() == 0 {
		return "struct{}", nil
	}

	fields := make([]string, t.NumField())
	for i := range fields {
		f := t.Field(i)
		if f.PkgPath != "" {
			return "", fmt.Errorf("%w: struct %v has unexported field %v",
				kontext.ErrProxyImpossible, t, f.Name)
		}
		ft, err := s.typeString(f.Type)
		if err != nil {
			return "", err
		}
		if f.Anonymous {
			fields[i] = ft
		} else {
			fields[i] = f.Name + " " + ft
		}
		if f.Tag != "" {
			fields[i] += " " + strconv.Quote(string(f.Tag))
		}
	}
	return "struct{ " + strings.Join(fields, "; ") + " }", nil
}

// signature renders the parameters and results of a function type. Names
// are used when given.
func (s *importSet) signature(ft reflect.Type, params, results []string) (string, error) {
	in := make([]string, ft.NumIn())
	for i := range in {
		var (
			t   string
			err error
		)
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			t, err = s.typeString(ft.In(i).Elem())
			t = "..." + t
		} else {
			t, err = s.typeString(ft.In(i))
		}
		if err != nil {
			return "", err
		}
		if params != nil {
			t = params[i] + " " + t
		}
		in[i] = t
	}

	out := make([]string, ft.NumOut())
	for i := range out {
		t, err := s.typeString(ft.Out(i))
		if err != nil {
			return "", err
		}
		if results != nil {
			t = results[i] + " " + t
		}
		out[i] = t
	}

	sig := "(" + strings.Join(in, ", ") + ")"
	switch {
	case len(out) == 0:
	case len(out) == 1 && results == nil:
		sig += " " + out[0]
	default:
		sig += " (" + strings.Join(out, ", ") + ")"
	}
	return sig, nil
}
