/*
Copyright 2020 The symcn authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package app contains all the commands that tracker need to start.
package app

import (
	"flag"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/symcn/tracker/pkg/directory"
	"github.com/symcn/tracker/pkg/option"
	"k8s.io/klog"
)

// GetRootCmd returns the root of the cobra command-tree.
func GetRootCmd(args []string) *cobra.Command {
	opt := option.DefaultRootOption()
	rootCmd := &cobra.Command{
		Use:               "tracker",
		Short:             "Looks up the providers of services registered in a directory",
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		Run:               runHelp,
	}

	rootCmd.SetArgs(args)
	AddDirectoryFlags(rootCmd.PersistentFlags(), opt.Directory)

	// Make sure that klog logging variables are initialized so that we can
	// update them from this file.
	klog.InitFlags(nil)

	// Make sure klog logs to stderr, as it will try to log to directories
	// that may not exist in the container (/tmp).
	flag.Set("logtostderr", "true")

	AddFlags(rootCmd)
	rootCmd.AddCommand(NewGetCmd(opt))
	rootCmd.AddCommand(NewServeCmd(opt))
	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

// AddFlags ...
func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// AddDirectoryFlags binds the options of the directory backends.
func AddDirectoryFlags(fs *pflag.FlagSet, opt *option.Directory) {
	fs.StringVarP(&opt.Type, "directory", "d", opt.Type,
		fmt.Sprintf("the type of the service directory, one of [%s]", strings.Join(directory.Types(), ",")))
	fs.StringSliceVar(&opt.Address, "addr", opt.Address, "the addresses of the directory servers")
	fs.DurationVar(&opt.Timeout, "timeout", opt.Timeout, "the session timeout of the directory client")
	fs.StringVar(&opt.Root, "zk-root", opt.Root, "the root path of the dubbo registry in zookeeper")
	fs.StringVar(&opt.File, "file", opt.File, "the yaml file describing the services")
	fs.DurationVar(&opt.ReloadInterval, "reload-interval", opt.ReloadInterval, "how long the service file must be left unchanged before it is reloaded")
	fs.StringVar(&opt.Group, "nacos-group", opt.Group, "the nacos group services are looked up in")
	fs.StringSliceVar(&opt.Clusters, "nacos-clusters", opt.Clusters, "the nacos clusters services are looked up in")
	fs.StringVar(&opt.Namespace, "nacos-namespace", opt.Namespace, "the nacos namespace id")
}

// PrintFlags logs the flags in the flagset
func PrintFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(flag *pflag.Flag) {
		klog.Infof("FLAG: --%s=%q", flag.Name, flag.Value)
	})
}

func runHelp(cmd *cobra.Command, args []string) {
	cmd.Help()
}
