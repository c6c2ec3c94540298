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

package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/kontext/kontextevent"
)

const _envFile = ".env"

// A LoadOption modifies the behavior of Load.
type LoadOption interface {
	apply(*loader)
}

type loadOptionFunc func(*loader)

func (f loadOptionFunc) apply(l *loader) { f(l) }

// WithLogger sends configuration events to log.
func WithLogger(log kontextevent.Logger) LoadOption {
	return loadOptionFunc(func(l *loader) { l.log = log })
}

// WithLookup replaces os.LookupEnv as the source of environment variables
// used to expand ${VAR} references.
func WithLookup(f func(string) (string, bool)) LoadOption {
	return loadOptionFunc(func(l *loader) { l.lookUp = f })
}

type loader struct {
	log    kontextevent.Logger
	lookUp func(string) (string, bool)
}

// Load reads every YAML file in dir, then every YAML file in the context
// subdirectory dir/<context>, and merges them in that order so that the
// context-specific files override the global ones. Files within a
// directory are merged in lexical order. String values may reference
// environment variables; variables missing from the process environment
// are read from dir/.env.
func Load(dir, context string, opts ...LoadOption) (_ Provider, err error) {
	l := loader{
		log:    kontextevent.NopLogger,
		lookUp: os.LookupEnv,
	}
	for _, opt := range opts {
		opt.apply(&l)
	}

	var files []string
	defer func() {
		l.log.LogEvent(&kontextevent.ConfigLoaded{
			Context: context,
			Files:   files,
			Err:     err,
		})
	}()

	files, err = yamlFiles(dir, true)
	if err != nil {
		return nil, err
	}
	if context != "" {
		ctxFiles, err := yamlFiles(filepath.Join(dir, context), false)
		if err != nil {
			return nil, err
		}
		files = append(files, ctxFiles...)
	}

	p, err := NewYAMLProviderFromFiles(files...)
	if err != nil {
		return nil, err
	}

	dotenv, err := readDotenv(filepath.Join(dir, _envFile))
	if err != nil {
		return nil, err
	}

	return NewExpandProvider(p, func(name string) string {
		if v, ok := l.lookUp(name); ok {
			return v
		}
		return dotenv[name]
	}), nil
}

func yamlFiles(dir string, mustExist bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "unable to read configuration directory %q", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func readDotenv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %q", path)
	}
	return env, nil
}
