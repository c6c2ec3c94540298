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
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/kontext/kontextevent"
)

const _envPrefix = "KONTEXT"

// settings are resolved from flags, KONTEXT_* variables and kontext.yaml, in
// that order.
type settings struct {
	ConfigDir string
	Context   string
	CacheDir  string
	Kernel    string
	Verbose   bool
}

type cli struct {
	v *viper.Viper
}

func newRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "kontext",
		Short:         "Inspect kontext configuration and container caches",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("dir", "config", "configuration directory")
	flags.String("context", "dev", "configuration context")
	flags.String("cache-dir", "var/cache", "compiled container cache")
	flags.String("kernel", "", "kernel source file; caches older than it are stale")
	flags.BoolP("verbose", "v", false, "log kontext events to stderr")

	root.AddCommand(newConfigCommand(c), newCacheCommand(c))
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	c.v.SetEnvPrefix(_envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	c.v.SetConfigName("kontext")
	c.v.SetConfigType("yaml")
	c.v.AddConfigPath(".")
	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "reading kontext.yaml")
		}
	}

	return c.v.BindPFlags(cmd.Flags())
}

func (c *cli) settings() settings {
	return settings{
		ConfigDir: c.v.GetString("dir"),
		Context:   c.v.GetString("context"),
		CacheDir:  c.v.GetString("cache-dir"),
		Kernel:    c.v.GetString("kernel"),
		Verbose:   c.v.GetBool("verbose"),
	}
}

func (c *cli) logger(cmd *cobra.Command) kontextevent.Logger {
	if !c.settings().Verbose {
		return kontextevent.NopLogger
	}
	return &kontextevent.ConsoleLogger{W: cmd.ErrOrStderr()}
}
