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
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type yamlConfigProvider struct {
	root map[string]interface{}
}

var _ Provider = (*yamlConfigProvider)(nil)

// NewYAMLProviderFromReaders creates a configuration provider from a set of
// readers. Mappings are merged recursively, scalars and sequences are
// overridden in the order of the readers. A key that holds a scalar,
// sequence or mapping in one source and a different shape in another is a
// merge error.
func NewYAMLProviderFromReaders(readers ...io.Reader) (Provider, error) {
	root := make(map[string]interface{})
	for i, r := range readers {
		tmp, err := decodeYAML(r)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to decode source %d", i)
		}
		if err := mergeMaps(root, tmp, Root); err != nil {
			return nil, err
		}
	}

	return &yamlConfigProvider{root: root}, nil
}

// NewYAMLProviderFromBytes creates a config provider from byte-backed YAML
// blobs, merged like NewYAMLProviderFromReaders.
func NewYAMLProviderFromBytes(yamls ...[]byte) (Provider, error) {
	readers := make([]io.Reader, len(yamls))
	for i := range yamls {
		readers[i] = bytes.NewReader(yamls[i])
	}

	return NewYAMLProviderFromReaders(readers...)
}

// NewYAMLProviderFromFiles creates a configuration provider from a set of
// YAML file names, merged in the order given.
func NewYAMLProviderFromFiles(files ...string) (Provider, error) {
	readers := make([]io.Reader, 0, len(files))
	for _, name := range files {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read configuration file %q", name)
		}
		readers = append(readers, bytes.NewReader(b))
	}

	p, err := NewYAMLProviderFromReaders(readers...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to merge %v", files)
	}
	return p, nil
}

// Name returns the config provider name
func (y *yamlConfigProvider) Name() string {
	return "yaml"
}

// Get returns a configuration value by name
func (y *yamlConfigProvider) Get(key string) Value {
	if key == Root {
		return NewValue(y, key, y.root, true)
	}

	v, ok := find(y.root, strings.Split(key, _separator))
	return NewValue(y, key, v, ok)
}

func find(node interface{}, parts []string) (interface{}, bool) {
	for _, part := range parts {
		switch n := node.(type) {
		case map[string]interface{}:
			child, ok := lookupFold(n, part)
			if !ok {
				return nil, false
			}
			node = child
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(n) {
				return nil, false
			}
			node = n[idx]
		default:
			return nil, false
		}
	}
	return node, true
}

func lookupFold(m map[string]interface{}, key string) (interface{}, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func decodeYAML(r io.Reader) (map[string]interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	out := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type nodeType int

const (
	valueNode nodeType = iota
	objectNode
	arrayNode
)

func (t nodeType) String() string {
	switch t {
	case objectNode:
		return "mapping"
	case arrayNode:
		return "sequence"
	default:
		return "scalar"
	}
}

func getNodeType(val interface{}) nodeType {
	switch val.(type) {
	case map[string]interface{}:
		return objectNode
	case []interface{}:
		return arrayNode
	default:
		return valueNode
	}
}

// mergeMaps merges src into dst in place.
func mergeMaps(dst, src map[string]interface{}, path string) error {
	for k, sv := range src {
		key := k
		if path != Root {
			key = path + _separator + k
		}

		dv, ok := dst[k]
		if !ok || dv == nil || sv == nil {
			dst[k] = sv
			continue
		}

		dt, st := getNodeType(dv), getNodeType(sv)
		if dt != st {
			return fmt.Errorf("can't merge %q: %v conflicts with %v", key, dt, st)
		}

		if dt == objectNode {
			if err := mergeMaps(dv.(map[string]interface{}), sv.(map[string]interface{}), key); err != nil {
				return err
			}
			continue
		}
		dst[k] = sv
	}
	return nil
}
