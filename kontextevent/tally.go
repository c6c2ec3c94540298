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
	"strconv"

	"github.com/uber-go/tally/v4"
)

// TallyLogger is a Logger that records container activity as metrics.
//
// Counters are tagged with the scope or kind they concern and with
// result=success or result=failure. Instantiation latency is recorded in
// the "instantiation" timer.
type TallyLogger struct {
	Scope tally.Scope
}

var _ Logger = (*TallyLogger)(nil)

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func (l *TallyLogger) count(name string, tags map[string]string) {
	l.Scope.Tagged(tags).Counter(name).Inc(1)
}

// LogEvent records the event.
func (l *TallyLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case *Bound:
		l.count("bindings", map[string]string{"kind": e.Kind, "result": result(e.Err)})
	case *ScopeRegistered:
		l.count("scopes", map[string]string{"scope": e.Scope, "result": result(e.Err)})
	case *Instantiated:
		tags := map[string]string{"scope": scopeTag(e.Scope), "result": result(e.Err)}
		l.count("instantiations", tags)
		l.Scope.Tagged(tags).Timer("instantiation").Record(e.Runtime)
	case *CycleDetected:
		l.Scope.Counter("cycles").Inc(1)
	case *ScopeEntered:
		l.count("scope_entries", map[string]string{"scope": e.Scope, "resumed": strconv.FormatBool(e.Resumed)})
	case *ScopeLeft:
		l.count("scope_exits", map[string]string{"scope": e.Scope, "terminated": strconv.FormatBool(e.Terminated)})
	case *ScopeCleared:
		l.count("scope_clears", map[string]string{"scope": e.Scope})
	case *ProxyActivated:
		l.count("proxy_activations", map[string]string{"scope": e.Scope, "result": result(e.Err)})
	case *ContainerCompiled:
		l.count("compilations", map[string]string{
			"context":     e.Context,
			"regenerated": strconv.FormatBool(e.Reason != ""),
			"result":      result(e.Err),
		})
	case *ProxyGenerated:
		l.count("proxies_generated", map[string]string{"result": result(e.Err)})
	case *ConfigLoaded:
		l.count("config_loads", map[string]string{"context": e.Context, "result": result(e.Err)})
		l.Scope.Gauge("config_files").Update(float64(len(e.Files)))
	}
}

func scopeTag(scope string) string {
	if scope == "" {
		return "dependent"
	}
	return scope
}
