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

// Package kontextevent defines a means of changing how kontext logs
// internal events.
//
// # Changing the Logger
//
// By default, containers do not log. Pass kontext.WithLogger to a
// container, configuration loader or compiler to receive events:
//
//	c, err := b.Build(kontext.WithLogger(&kontextevent.ConsoleLogger{W: os.Stderr}))
//
// # Implementing a Custom Logger
//
// To implement a custom logger, implement the kontextevent.Logger
// interface and switch over the event types you care about.
//
//	func (l *myLogger) LogEvent(event kontextevent.Event) {
//		switch e := event.(type) {
//		case *kontextevent.Instantiated:
//			// ...
//		case *kontextevent.CycleDetected:
//			// ...
//		}
//	}
package kontextevent
