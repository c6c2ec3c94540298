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
	"strconv"
	"strings"
	"text/template"

	"go.uber.org/kontext"
)

const _headerPrefix = "// kontext:"

var _tableTemplate = template.Must(template.New("table").Funcs(template.FuncMap{
	"quote":   strconv.Quote,
	"strings": stringsLiteral,
	"kind":    kindIdent,
}).Parse(`// Code generated by kontextgen. DO NOT EDIT.
` + _headerPrefix + `modules={{.ModulesHash}} scopes={{.ScopesHash}}

package {{.Package}}

import (
{{- range .Imports}}
	{{.}}
{{- end}}
)

// Entries describes how every binding of the {{quote .Context}} container is
// resolved.
var Entries = []kontext.PlanEntry{
{{- range .Entries}}
	{
		Type:   {{quote .Type}},
		Kind:   kontext.{{kind .Kind}},
		Scope:  {{quote .Scope}},
		Target: {{quote .Target}},
		{{- if .Params}}
		Params: []kontext.ParamEntry{
		{{- range .Params}}
			{Name: {{quote .Name}}, Type: {{quote .Type}}, Optional: {{.Optional}}, Resolved: {{.Resolved}}},
		{{- end}}
		},
		{{- end}}
		{{- if .Markers}}
		Markers: {{strings .Markers}},
		{{- end}}
		{{- if .Initializers}}
		Initializers: {{strings .Initializers}},
		{{- end}}
		{{- if .Decorators}}
		Decorators: {{strings .Decorators}},
		{{- end}}
		Proxied: {{.Proxied}},
	},
{{- end}}
}

// Configure attaches the generated proxy adapters to b.
func Configure(b *kontext.Builder) {
{{- range .Proxies}}
	kontext.Bind[{{.Iface}}](b).ProxiedBy({{.Func}})
{{- end}}
}

// Build attaches the generated proxy adapters to b and builds a frozen
// container, after checking that b still compiles to Entries.
func Build(b *kontext.Builder, opts ...kontext.Option) (*kontext.Container, error) {
	Configure(b)
	p, err := b.Compile()
	if err != nil {
		return nil, err
	}
	if err := p.Verify(Entries); err != nil {
		return nil, err
	}
	return p.Build(opts...)
}
`))

type tableData struct {
	Package     string
	Context     string
	ModulesHash string
	ScopesHash  string
	Imports     []string
	Entries     []kontext.PlanEntry
	Proxies     []tableProxy
}

type tableProxy struct {
	Iface string
	Func  string
}

// tableSource renders container.go. Proxied interfaces are imported again
// because every generated file carries its own imports.
func tableSource(data *tableData, proxies []*proxySpec) ([]byte, error) {
	imports := newImportSet("b", "p", "err", "opts")
	imports.add(_kontextPath)
	for _, p := range proxies {
		iface, err := imports.typeString(p.Type)
		if err != nil {
			return nil, err
		}
		data.Proxies = append(data.Proxies, tableProxy{Iface: iface, Func: p.Func})
	}
	data.Imports = imports.specs()

	var sb strings.Builder
	if err := _tableTemplate.Execute(&sb, data); err != nil {
		return nil, err
	}
	return format(_tableFile, sb.String())
}

func stringsLiteral(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = strconv.Quote(s)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}

func kindIdent(k kontext.Kind) string {
	switch k {
	case kontext.KindFactory:
		return "KindFactory"
	case kontext.KindFactoryAlias:
		return "KindFactoryAlias"
	case kontext.KindAlias:
		return "KindAlias"
	default:
		return "KindImplementation"
	}
}
