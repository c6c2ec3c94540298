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
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"
)

// param describes one injectable field or function parameter.
type param struct {
	name     string
	typ      reflect.Type
	optional bool

	// def holds the declared default, if any.
	def reflect.Value

	// index locates struct fields and fields of In structs.
	index []int
}

// callPlan describes how to call a factory, initializer or decorator.
type callPlan struct {
	fn   reflect.Value
	name string

	// Number of leading arguments supplied by the caller, such as the
	// instance passed to an initializer.
	lead int

	params []param

	// in is the parameter struct when the function takes a single In
	// struct after its leading arguments.
	in reflect.Type

	// out is the first non-error result, or nil.
	out    reflect.Type
	hasErr bool
}

// structPlan describes how to construct a struct or pointer to struct.
type structPlan struct {
	typ    reflect.Type
	elem   reflect.Type
	params []param
}

func newCallPlan(fn reflect.Value, ft reflect.Type, name string, lead int) (*callPlan, error) {
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %v is not a function", ErrInvalidArgument, name)
	}
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: %v can't be variadic", ErrInvalidArgument, name)
	}
	if ft.NumIn() < lead {
		return nil, fmt.Errorf("%w: %v must take at least %d arguments", ErrInvalidArgument, name, lead)
	}

	p := &callPlan{fn: fn, name: name, lead: lead}
	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == _errorType {
			p.hasErr = true
		} else {
			p.out = ft.Out(0)
		}
	case 2:
		if ft.Out(0) == _errorType || ft.Out(1) != _errorType {
			return nil, fmt.Errorf("%w: %v must return a value and an error", ErrInvalidArgument, name)
		}
		p.out, p.hasErr = ft.Out(0), true
	default:
		return nil, fmt.Errorf("%w: %v returns too many values", ErrInvalidArgument, name)
	}

	if ft.NumIn() == lead+1 && embedsIn(ft.In(lead)) {
		p.in = ft.In(lead)
		params, err := inParams(p.in, name)
		if err != nil {
			return nil, err
		}
		p.params = params
		return p, nil
	}

	for i := lead; i < ft.NumIn(); i++ {
		p.params = append(p.params, param{
			name: strconv.Itoa(i - lead),
			typ:  ft.In(i),
		})
	}
	return p, nil
}

// inParams reads the fields of a parameter struct.
func inParams(t reflect.Type, name string) ([]param, error) {
	var params []param
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == _inType {
			continue
		}
		if f.PkgPath != "" {
			return nil, fmt.Errorf("%w: unexported field %q of %v in %v",
				ErrInvalidArgument, f.Name, TypeName(t), name)
		}
		p := param{name: f.Name, typ: f.Type, index: f.Index}
		if opt, ok := f.Tag.Lookup("optional"); ok {
			o, err := strconv.ParseBool(opt)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid optional tag on %v.%v: %v",
					ErrInvalidArgument, TypeName(t), f.Name, err)
			}
			p.optional = o
		}
		if err := p.parseDefault(f, t); err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func newStructPlan(t reflect.Type) (*structPlan, error) {
	elem, ok := structElem(t)
	if !ok {
		return nil, &ContextLookupError{Type: t, Reason: "not a struct type"}
	}

	sp := &structPlan{typ: t, elem: elem}
	for i := 0; i < elem.NumField(); i++ {
		f := elem.Field(i)
		tag, ok := f.Tag.Lookup("inject")
		if !ok {
			continue
		}
		if f.PkgPath != "" {
			return nil, fmt.Errorf("%w: can't inject unexported field %q of %v",
				ErrInvalidArgument, f.Name, TypeName(elem))
		}

		p := param{name: f.Name, typ: f.Type, index: f.Index}
		switch tag {
		case "":
		case "optional":
			p.optional = true
		default:
			return nil, fmt.Errorf("%w: invalid inject tag %q on %v.%v",
				ErrInvalidArgument, tag, TypeName(elem), f.Name)
		}
		if err := p.parseDefault(f, elem); err != nil {
			return nil, err
		}
		sp.params = append(sp.params, p)
	}
	return sp, nil
}

// parseDefault reads the default tag of f. Strings are taken verbatim,
// everything else is decoded as YAML.
func (p *param) parseDefault(f reflect.StructField, owner reflect.Type) error {
	def, ok := f.Tag.Lookup("default")
	if !ok {
		return nil
	}

	v := reflect.New(f.Type)
	if f.Type.Kind() == reflect.String {
		v.Elem().SetString(def)
	} else if err := yaml.Unmarshal([]byte(def), v.Interface()); err != nil {
		return fmt.Errorf("%w: invalid default %q for %v.%v: %v",
			ErrInvalidArgument, def, TypeName(owner), f.Name, err)
	}
	p.def = v.Elem()
	p.optional = true
	return nil
}

// defaultValue returns the declared default or the zero value.
func (p *param) defaultValue() reflect.Value {
	if p.def.IsValid() {
		return p.def
	}
	return reflect.Zero(p.typ)
}
