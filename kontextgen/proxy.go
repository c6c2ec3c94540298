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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"go.uber.org/kontext"
)

const _kontextPath = "go.uber.org/kontext"

// ProxyFileName returns the name of the file holding the adapter for t.
// Type names differing only in case share a file name.
func ProxyFileName(t reflect.Type) string {
	sum := sha256.Sum256([]byte(strings.ToLower(kontext.TypeName(t))))
	return "proxy_" + hex.EncodeToString(sum[:]) + ".go"
}

var _proxyTemplate = template.Must(template.New("proxy").Parse(`// Code generated by kontextgen. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	{{.}}
{{- end}}
)

var _ {{.Iface}} = {{.Struct}}{}

// {{.Struct}} forwards {{.TypeName}} to the instance active in its scope.
type {{.Struct}} struct{ p *kontext.Proxy }

// {{.Func}} adapts p to {{.Iface}}.
func {{.Func}}(p *kontext.Proxy) {{.Iface}} {
	return {{.Struct}}{p: p}
}
{{range .Methods}}
func (x {{$.Struct}}) {{.Name}}{{.Sig}} {
{{- if .HasErr}}
	obj, err := x.p.Instance()
	if err != nil {
		return
	}
	return obj.({{$.Iface}}).{{.Name}}({{.Args}})
{{- else}}
	{{if .HasResults}}return {{end}}x.p.MustInstance().({{$.Iface}}).{{.Name}}({{.Args}})
{{- end}}
}
{{end}}`))

type proxyMethod struct {
	Name       string
	Sig        string
	Args       string
	HasResults bool
	HasErr     bool
}

// proxySpec is an adapter about to be generated.
type proxySpec struct {
	Type     reflect.Type
	TypeName string
	File     string
	Package  string
	Imports  []string
	Iface    string
	Struct   string
	Func     string
	Methods  []proxyMethod
}

// newProxySpec prepares the adapter of t. name is the exported stem of the
// generated identifiers.
func newProxySpec(pkg string, t reflect.Type, name string) (*proxySpec, error) {
	if err := kontext.CheckProxyable(t); err != nil {
		return nil, err
	}

	imports := newImportSet("x", "p", "obj", "err")
	imports.add(_kontextPath)
	iface, err := imports.typeString(t)
	if err != nil {
		return nil, err
	}

	spec := &proxySpec{
		Type:     t,
		TypeName: kontext.TypeName(t),
		File:     ProxyFileName(t),
		Package:  pkg,
		Iface:    iface,
		Struct:   lowerFirst(name) + "Proxy",
		Func:     "New" + name + "Proxy",
	}
	for i := 0; i < t.NumMethod(); i++ {
		m, err := imports.method(t.Method(i))
		if err != nil {
			return nil, err
		}
		spec.Methods = append(spec.Methods, m)
	}
	spec.Imports = imports.specs()
	return spec, nil
}

func (s *importSet) method(m reflect.Method) (proxyMethod, error) {
	ft := m.Type
	params := make([]string, ft.NumIn())
	args := make([]string, ft.NumIn())
	for i := range params {
		params[i] = "a" + strconv.Itoa(i)
		args[i] = params[i]
	}
	if ft.IsVariadic() {
		args[len(args)-1] += "..."
	}

	results := make([]string, ft.NumOut())
	for i := range results {
		results[i] = "r" + strconv.Itoa(i)
	}
	hasErr := ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == reflect.TypeOf((*error)(nil)).Elem()
	if hasErr {
		results[len(results)-1] = "err"
	}

	sig, err := s.signature(ft, params, results)
	if err != nil {
		return proxyMethod{}, fmt.Errorf("method %v: %w", m.Name, err)
	}
	return proxyMethod{
		Name:       m.Name,
		Sig:        sig,
		Args:       strings.Join(args, ", "),
		HasResults: ft.NumOut() > 0,
		HasErr:     hasErr,
	}, nil
}

func (p *proxySpec) source() ([]byte, error) {
	var sb strings.Builder
	if err := _proxyTemplate.Execute(&sb, p); err != nil {
		return nil, err
	}
	return format(p.File, sb.String())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
