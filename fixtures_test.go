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

package kontext_test

import (
	"errors"
	"strings"

	"go.uber.org/kontext"
	"go.uber.org/kontext/config"
)

type Greeter interface {
	Greet(name string) string
}

type englishGreeter struct {
	Prefix string `inject:"optional" default:"Hello"`
}

func (g *englishGreeter) Greet(name string) string { return g.Prefix + ", " + name }

type shoutingGreeter struct{ Greeter }

func (g shoutingGreeter) Greet(name string) string { return strings.ToUpper(g.Greeter.Greet(name)) }

type greeterFactory struct {
	Prefix string `inject:"optional" default:"Yo"`
}

func (f *greeterFactory) NewGreeter(suffix string) Greeter {
	return &englishGreeter{Prefix: f.Prefix + suffix}
}

// Counter is proxied in the application scope.
type Counter interface {
	Next() (int, error)
}

type memoryCounter struct{ n int }

func (c *memoryCounter) Next() (int, error) {
	c.n++
	return c.n, nil
}

type counterProxy struct{ p *kontext.Proxy }

func (c counterProxy) Next() (int, error) {
	obj, err := c.p.Instance()
	if err != nil {
		return 0, err
	}
	return obj.(Counter).Next()
}

func newCounterProxy(p *kontext.Proxy) Counter { return counterProxy{p} }

type sealed interface {
	Open()
	seal()
}

type cycleA struct {
	B *cycleB `inject:""`
}

type cycleB struct {
	A *cycleA `inject:""`
}

type leaf struct{}

type endpoint struct {
	URL     string
	Retries int
}

func newEndpoint(url string, retries int) *endpoint {
	return &endpoint{URL: url, Retries: retries}
}

type client struct {
	Endpoint *endpoint `inject:""`
	Greeter  Greeter   `inject:"optional"`
	Name     string    `inject:"optional" default:"anonymous"`
}

type mailerParams struct {
	kontext.In

	Greeter Greeter
	Sender  string `optional:"true" default:"noreply@example.com"`
	Retries int    `optional:"true"`
}

type mailer struct {
	greeter Greeter
	sender  string
	retries int
}

func newMailer(p mailerParams) *mailer {
	return &mailer{greeter: p.Greeter, sender: p.Sender, retries: p.Retries}
}

type needsName struct {
	Name string `inject:""`
}

// pingA and pingB alias each other in cycle tests.
type pingA interface{ Ping() }

type pingB interface{ Ping() }

type needsGreeter struct {
	Greeter Greeter `inject:""`
}

type configured struct {
	Config config.Provider `inject:""`
}

type unconfigured struct {
	Config config.Provider `inject:""`
}

type setterTarget struct {
	greeter Greeter
	cfg     config.Provider
	other   string
}

func (s *setterTarget) SetGreeter(g Greeter)           { s.greeter = g }
func (s *setterTarget) SetOther(v string)              { s.other = v }
func (s *setterTarget) InjectConfig(p config.Provider) { s.cfg = p }

var errSetter = errors.New("setter failed")

type failingSetter struct{}

func (*failingSetter) SetGreeter(Greeter) error { return errSetter }

type route struct{ Path string }

type tag struct{ Name string }

type requestScoped struct{}
