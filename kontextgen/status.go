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
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Status describes the artifacts of a context as found on disk.
type Status struct {
	Header  Header
	ModTime time.Time

	// Proxies lists the adapter files.
	Proxies []string

	// Outdated is set when the kernel source is newer than the table.
	Outdated bool
}

// Status inspects the artifacts without compiling. Errors wrap
// fs.ErrNotExist when the context was never compiled.
func (c *Compiler) Status() (*Status, error) {
	info, err := os.Stat(c.Path())
	if err != nil {
		return nil, errors.Wrapf(err, "checking %v", c.Path())
	}

	h, err := ReadHeader(c.Path())
	if err != nil {
		return nil, err
	}

	proxies, err := filepath.Glob(filepath.Join(c.dir(), "proxy_*.go"))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for i, p := range proxies {
		proxies[i] = filepath.Base(p)
	}
	sort.Strings(proxies)

	s := &Status{
		Header:  h,
		ModTime: info.ModTime(),
		Proxies: proxies,
	}
	if c.KernelSource != "" {
		kernel, err := os.Stat(c.KernelSource)
		if err != nil {
			return nil, errors.Wrapf(err, "checking kernel source %v", c.KernelSource)
		}
		s.Outdated = kernel.ModTime().After(info.ModTime())
	}
	return s, nil
}

// Contexts lists the compiled contexts below dir.
func Contexts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %v", dir)
	}

	var contexts []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, e.Name(), _tableFile)); err == nil {
			contexts = append(contexts, e.Name())
		}
	}
	return contexts, nil
}
