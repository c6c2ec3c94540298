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

package kontextevent

import (
	"fmt"
	"io"
	"strings"
)

// ConsoleLogger is a kontext event logger that attempts to write
// human-readable messages to the console.
//
// Use this during development.
type ConsoleLogger struct {
	W io.Writer
}

var _ Logger = (*ConsoleLogger)(nil)

func (l *ConsoleLogger) logf(msg string, args ...interface{}) {
	fmt.Fprintf(l.W, "[Kontext] "+msg+"\n", args...)
}

// LogEvent logs the given event to the provided writer.
func (l *ConsoleLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case *Bound:
		if e.Err != nil {
			l.logf("ERROR\t\tBinding %v from %v failed: %v", e.TypeName, e.Caller, e.Err)
			return
		}
		scope := e.Scope
		if scope == "" {
			scope = "dependent"
		}
		l.logf("BIND\t%v (%v, %v)", e.TypeName, e.Kind, scope)
	case *ScopeRegistered:
		if e.Err != nil {
			l.logf("ERROR\t\tRegistering scope %v failed: %v", e.Scope, e.Err)
		} else {
			l.logf("SCOPE\t%v", e.Scope)
		}
	case *Instantiated:
		if e.Err != nil {
			l.logf("ERROR\t\tCreating %v failed in %v: %v", e.TypeName, e.Runtime, e.Err)
		} else {
			l.logf("CREATE\t%v in %v", e.TypeName, e.Runtime)
		}
	case *CycleDetected:
		l.logf("ERROR\t\tCycle detected: %v", strings.Join(e.Chain, " -> "))
	case *ScopeEntered:
		if e.Resumed {
			l.logf("ENTER\t%v resumed context %v", e.Scope, e.ContextID)
		} else {
			l.logf("ENTER\t%v bound context %v", e.Scope, e.ContextID)
		}
	case *ScopeLeft:
		l.logf("LEAVE\t%v context %v (terminated: %v)", e.Scope, e.ContextID, e.Terminated)
	case *ScopeCleared:
		l.logf("CLEAR\t%v", e.Scope)
	case *ProxyActivated:
		if e.Err != nil {
			l.logf("ERROR\t\tActivating proxy %v failed: %v", e.TypeName, e.Err)
		} else {
			l.logf("ACTIVATE\t%v in %v context %v", e.TypeName, e.Scope, e.ContextID)
		}
	case *ContainerCompiled:
		switch {
		case e.Err != nil:
			l.logf("ERROR\t\tCompiling container %q failed: %v", e.Context, e.Err)
		case e.Reason == "":
			l.logf("COMPILE\t%q is fresh at %v", e.Context, e.Path)
		default:
			l.logf("COMPILE\t%q regenerated at %v (%v)", e.Context, e.Path, e.Reason)
		}
	case *ProxyGenerated:
		if e.Err != nil {
			l.logf("ERROR\t\tGenerating proxy for %v failed: %v", e.TypeName, e.Err)
		} else {
			l.logf("PROXY\t%v => %v", e.TypeName, e.Path)
		}
	case *ConfigLoaded:
		if e.Err != nil {
			l.logf("ERROR\t\tLoading configuration %q failed: %v", e.Context, e.Err)
		} else {
			l.logf("CONFIG\t%q from %v", e.Context, strings.Join(e.Files, ", "))
		}
	}
}
