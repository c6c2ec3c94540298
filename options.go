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

package kontext

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/kontext/config"
	"go.uber.org/kontext/kontextevent"
)

// An Option configures a container being built.
type Option interface {
	fmt.Stringer

	apply(*buildOptions)
}

type buildOptions struct {
	logger kontextevent.Logger
	config config.Provider
	clock  clock.Clock
}

// WithLogger sends container events to the given logger. By default events
// are discarded.
func WithLogger(l kontextevent.Logger) Option {
	return loggerOption{l}
}

type loggerOption struct{ l kontextevent.Logger }

func (o loggerOption) apply(opts *buildOptions) {
	if o.l != nil {
		opts.logger = o.l
	}
}

func (o loggerOption) String() string {
	return fmt.Sprintf("kontext.WithLogger(%v)", o.l)
}

// WithConfig sets the configuration returned for config.Provider
// dependencies. By default the configuration is empty.
func WithConfig(p config.Provider) Option {
	return configOption{p}
}

type configOption struct{ p config.Provider }

func (o configOption) apply(opts *buildOptions) {
	opts.config = o.p
}

func (o configOption) String() string {
	if o.p == nil {
		return "kontext.WithConfig(nil)"
	}
	return fmt.Sprintf("kontext.WithConfig(%v)", o.p.Name())
}

// WithClock sets the clock used to time instantiations reported in
// kontextevent.Instantiated. Tests may pass a *clock.Mock.
func WithClock(c clock.Clock) Option {
	return clockOption{c}
}

type clockOption struct{ c clock.Clock }

func (o clockOption) apply(opts *buildOptions) {
	if o.c != nil {
		opts.clock = o.c
	}
}

func (o clockOption) String() string {
	return fmt.Sprintf("kontext.WithClock(%T)", o.c)
}
