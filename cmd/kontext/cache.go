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
	"errors"
	"fmt"
	"io/fs"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/kontext/kontextgen"
)

func newCacheCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect compiled container caches",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status [context...]",
			Short: "Report whether compiled containers are fresh",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.cacheStatus(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "purge [context...]",
			Short: "Remove compiled containers",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.cachePurge(cmd, args)
			},
		},
	)
	return cmd
}

// contexts returns args, or every compiled context when args is empty.
func (c *cli) contexts(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	return kontextgen.Contexts(c.settings().CacheDir)
}

func (c *cli) compiler(cmd *cobra.Command, context string) *kontextgen.Compiler {
	s := c.settings()
	return &kontextgen.Compiler{
		Dir:          s.CacheDir,
		Context:      context,
		KernelSource: s.Kernel,
		Logger:       c.logger(cmd),
	}
}

func (c *cli) cacheStatus(cmd *cobra.Command, args []string) error {
	contexts, err := c.contexts(args)
	if err != nil {
		return err
	}
	if len(contexts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no compiled containers")
		return nil
	}

	var (
		fresh   = color.New(color.FgGreen).SprintFunc()
		stale   = color.New(color.FgYellow).SprintFunc()
		missing = color.New(color.FgRed).SprintFunc()
	)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, ctx := range contexts {
		st, err := c.compiler(cmd, ctx).Status()
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fmt.Fprintf(w, "%v\t%v\n", ctx, missing("missing"))
			continue
		case err != nil:
			return err
		}

		state := fresh("fresh")
		if st.Outdated {
			state = stale("stale")
		}
		fmt.Fprintf(w, "%v\t%v\tmodules=%.12s\tscopes=%.12s\tproxies=%d\t%v\n",
			ctx, state, st.Header.ModulesHash, st.Header.ScopesHash,
			len(st.Proxies), st.ModTime.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func (c *cli) cachePurge(cmd *cobra.Command, args []string) error {
	contexts, err := c.contexts(args)
	if err != nil {
		return err
	}

	done := color.New(color.FgGreen).SprintFunc()
	for _, ctx := range contexts {
		if err := c.compiler(cmd, ctx).Purge(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%v %v\n", done("purged"), ctx)
	}
	return nil
}
