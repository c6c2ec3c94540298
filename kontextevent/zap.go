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
	"strings"

	"go.uber.org/zap"
)

// ZapLogger is a kontext event logger that logs events to Zap.
type ZapLogger struct {
	Logger *zap.Logger
}

var _ Logger = (*ZapLogger)(nil)

// LogEvent logs the given event to the provided Zap logger.
func (l *ZapLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case *Bound:
		if e.Err != nil {
			l.Logger.Error("binding failed",
				zap.String("type", e.TypeName),
				zap.String("caller", e.Caller),
				zap.Error(e.Err))
		} else {
			l.Logger.Info("bound",
				zap.String("type", e.TypeName),
				zap.String("kind", e.Kind),
				zap.String("scope", e.Scope),
				zap.Strings("markers", e.Markers),
				zap.String("caller", e.Caller))
		}
	case *ScopeRegistered:
		if e.Err != nil {
			l.Logger.Error("scope registration failed",
				zap.String("scope", e.Scope),
				zap.Error(e.Err))
		} else {
			l.Logger.Info("scope registered", zap.String("scope", e.Scope))
		}
	case *Instantiated:
		if e.Err != nil {
			l.Logger.Error("instantiation failed",
				zap.String("type", e.TypeName),
				zap.String("scope", e.Scope),
				zap.Error(e.Err))
		} else {
			l.Logger.Debug("instantiated",
				zap.String("type", e.TypeName),
				zap.String("scope", e.Scope),
				zap.String("runtime", e.Runtime.String()))
		}
	case *CycleDetected:
		l.Logger.Error("cyclic dependency",
			zap.String("chain", strings.Join(e.Chain, " -> ")))
	case *ScopeEntered:
		l.Logger.Info("scope entered",
			zap.String("scope", e.Scope),
			zap.String("context", e.ContextID),
			zap.Bool("resumed", e.Resumed))
	case *ScopeLeft:
		l.Logger.Info("scope left",
			zap.String("scope", e.Scope),
			zap.String("context", e.ContextID),
			zap.Bool("terminated", e.Terminated))
	case *ScopeCleared:
		l.Logger.Info("scope cleared", zap.String("scope", e.Scope))
	case *ProxyActivated:
		if e.Err != nil {
			l.Logger.Error("proxy activation failed",
				zap.String("type", e.TypeName),
				zap.String("scope", e.Scope),
				zap.Error(e.Err))
		} else {
			l.Logger.Debug("proxy activated",
				zap.String("type", e.TypeName),
				zap.String("scope", e.Scope),
				zap.String("context", e.ContextID))
		}
	case *ContainerCompiled:
		if e.Err != nil {
			l.Logger.Error("container compilation failed",
				zap.String("context", e.Context),
				zap.Error(e.Err))
		} else {
			l.Logger.Info("container compiled",
				zap.String("context", e.Context),
				zap.String("path", e.Path),
				zap.Bool("regenerated", e.Reason != ""),
				zap.String("reason", e.Reason))
		}
	case *ProxyGenerated:
		if e.Err != nil {
			l.Logger.Error("proxy generation failed",
				zap.String("type", e.TypeName),
				zap.Error(e.Err))
		} else {
			l.Logger.Info("proxy generated",
				zap.String("type", e.TypeName),
				zap.String("path", e.Path))
		}
	case *ConfigLoaded:
		if e.Err != nil {
			l.Logger.Error("configuration load failed",
				zap.String("context", e.Context),
				zap.Error(e.Err))
		} else {
			l.Logger.Info("configuration loaded",
				zap.String("context", e.Context),
				zap.Strings("files", e.Files))
		}
	}
}
