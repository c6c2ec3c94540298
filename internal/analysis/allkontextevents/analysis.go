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

// Package allkontextevents implements a Go analysis pass that verifies that
// kontextevent.Logger implementations handle every kontextevent.Event type.
// Loggers that handle none of the event types, such as no-op loggers and
// fakes, are ignored.
package allkontextevents

import (
	"flag"
	"go/ast"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// EventPackage is the import path of the package declaring the events.
const EventPackage = "go.uber.org/kontext/kontextevent"

// Analyzer reports kontextevent.Loggers that leave event types unhandled.
var Analyzer = &analysis.Analyzer{
	Name:     "allkontextevents",
	Doc:      "check for unhandled kontextevent.Events",
	Run:      run,
	Flags:    flags(),
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

var _includeTests bool

func flags() flag.FlagSet {
	fs := flag.NewFlagSet("allkontextevents", flag.ExitOnError)
	fs.BoolVar(&_includeTests, "tests", false, "also check loggers declared in _test.go files")
	return *fs
}

var _nodes = []ast.Node{
	(*ast.File)(nil),
	(*ast.FuncDecl)(nil),
	(*ast.CaseClause)(nil),
	(*ast.TypeAssertExpr)(nil),
}

func run(pass *analysis.Pass) (any, error) {
	pkg := findPackage(pass.Pkg, EventPackage)
	if pkg == nil {
		// Neither kontextevent nor one of its importers.
		return nil, nil
	}

	c := checker{
		pass:   pass,
		events: loadEvents(pkg),
	}
	pass.ResultOf[inspect.Analyzer].(*inspector.Inspector).Nodes(_nodes, c.visit)
	return nil, nil
}

// checker tracks the LogEvent method being inspected.
type checker struct {
	pass   *analysis.Pass
	events eventTypes

	logger    types.Type
	unhandled *typeutil.Map
}

func (c *checker) visit(n ast.Node, push bool) bool {
	if !push {
		if fn, ok := n.(*ast.FuncDecl); ok && c.unhandled != nil {
			c.report(fn)
			c.logger, c.unhandled = nil, nil
		}
		return false
	}

	switch n := n.(type) {
	case *ast.File:
		name := c.pass.Fset.File(n.Pos()).Name()
		return _includeTests || !strings.HasSuffix(name, "_test.go")

	case *ast.FuncDecl:
		return c.enter(n)

	case *ast.CaseClause:
		for _, expr := range n.List {
			c.handled(expr)
		}

	case *ast.TypeAssertExpr:
		// A nil Type is the ev.(type) of a type switch.
		if n.Type != nil {
			c.handled(n.Type)
		}
	}
	return false
}

// enter starts tracking fn if it is the LogEvent method of a logger.
func (c *checker) enter(fn *ast.FuncDecl) bool {
	if fn.Recv == nil || fn.Name.Name != "LogEvent" {
		return false
	}

	recv := c.pass.TypesInfo.TypeOf(fn.Recv.List[0].Type)
	if recv == nil || !types.Implements(recv, c.events.logger) {
		return false
	}

	c.logger = recv
	c.unhandled = new(typeutil.Map)
	c.events.all.Iterate(func(t types.Type, _ any) {
		c.unhandled.Set(t, true)
	})
	return true
}

func (c *checker) handled(expr ast.Expr) {
	if c.unhandled == nil {
		return
	}
	if t := c.pass.TypesInfo.TypeOf(expr); t != nil {
		c.unhandled.Delete(t)
	}
}

func (c *checker) report(fn *ast.FuncDecl) {
	n := c.unhandled.Len()
	if n == 0 || n == c.events.all.Len() {
		return
	}

	missing := make([]string, 0, n)
	c.unhandled.Iterate(func(t types.Type, _ any) {
		missing = append(missing, types.TypeString(t, unqualified))
	})
	sort.Strings(missing)

	c.pass.Reportf(fn.Pos(), "%v doesn't handle %v",
		types.TypeString(c.logger, unqualified), missing)
}

func findPackage(pkg *types.Package, path string) *types.Package {
	if pkg.Path() == path {
		return pkg
	}
	for _, imp := range pkg.Imports() {
		if imp.Path() == path {
			return imp
		}
	}
	return nil
}

// eventTypes is the type information of the event package.
type eventTypes struct {
	logger *types.Interface
	all    *typeutil.Map
}

// loadEvents finds the Logger interface and every exported type, or pointer
// to it, that is convertible to Event.
func loadEvents(pkg *types.Package) eventTypes {
	scope := pkg.Scope()
	event := scope.Lookup("Event").Type()

	all := new(typeutil.Map)
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if name == "Event" || !obj.Exported() {
			continue
		}
		if _, ok := obj.(*types.TypeName); !ok {
			continue
		}

		t := obj.Type()
		if !types.ConvertibleTo(t, event) {
			t = types.NewPointer(t)
			if !types.ConvertibleTo(t, event) {
				continue
			}
		}
		all.Set(t, true)
	}

	return eventTypes{
		logger: scope.Lookup("Logger").Type().Underlying().(*types.Interface),
		all:    all,
	}
}

// unqualified prints type names without their package.
func unqualified(*types.Package) string { return "" }
