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

package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/kontext/config"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect merged configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show [key]",
		Short: "Print the merged configuration, or the value at a dotted key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.showConfig(cmd, args)
		},
	})
	return cmd
}

func (c *cli) showConfig(cmd *cobra.Command, args []string) error {
	s := c.settings()
	p, err := config.Load(s.ConfigDir, s.Context, config.WithLogger(c.logger(cmd)))
	if err != nil {
		return err
	}

	key := config.Root
	if len(args) > 0 {
		key = args[0]
	}
	v := p.Get(key)
	if !v.HasValue() {
		return errors.Errorf("no value at %q in context %q", key, s.Context)
	}

	out, err := yaml.Marshal(v.Value())
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
	return err
}
