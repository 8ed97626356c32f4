package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/symcn/tracker/pkg/directory"
	"github.com/symcn/tracker/pkg/option"
	"github.com/symcn/tracker/pkg/tracker"
	"k8s.io/klog"
)

type getOptions struct {
	all      bool
	optional bool
	output   string
}

// NewGetCmd ...
func NewGetCmd(ropt *option.RootOption) *cobra.Command {
	opt := &getOptions{output: "yaml"}
	cmd := &cobra.Command{
		Use:   "get <service>",
		Short: "Print the best provider of a service, or all of them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			PrintFlags(cmd.Flags())
			client, err := directory.New(*ropt.Directory)
			if err != nil {
				return err
			}
			defer client.Stop()

			r := tracker.NewRegister(client)
			defer r.Close()

			result, err := lookup(r, tracker.Identity(args[0]), opt)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result, opt.output)
		},
	}
	cmd.Flags().BoolVar(&opt.all, "all", opt.all, "print every provider of the service")
	cmd.Flags().BoolVar(&opt.optional, "optional", opt.optional, "don't fail when the service has no provider")
	cmd.Flags().StringVarP(&opt.output, "output", "o", opt.output, "output format, json or yaml")
	return cmd
}

func lookup(r *tracker.Register, id tracker.Identity, opt *getOptions) (interface{}, error) {
	if opt.all {
		return r.GetServices(id)
	}
	if opt.optional {
		s, ok, err := r.GetOptionalService(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			klog.Infof("Service %s has no provider at the moment", id)
		}
		return s, nil
	}
	return r.GetService(id)
}

func printResult(w io.Writer, result interface{}, output string) error {
	var (
		data []byte
		err  error
	)
	switch output {
	case "json":
		data, err = json.MarshalIndent(result, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(result)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
