package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/symcn/tracker/pkg/directory"
	"github.com/symcn/tracker/pkg/healthcheck"
	lookuphandler "github.com/symcn/tracker/pkg/lookup"
	"github.com/symcn/tracker/pkg/option"
	"github.com/symcn/tracker/pkg/router"
	"github.com/symcn/tracker/pkg/tracker"
	"github.com/symcn/tracker/pkg/utils"
	"k8s.io/klog"
)

// NewServeCmd ...
func NewServeCmd(ropt *option.RootOption) *cobra.Command {
	opt := ropt.Server
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the providers of services over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			PrintFlags(cmd.Flags())
			return serve(ropt)
		},
	}
	cmd.Flags().StringVar(&opt.HTTPAddress, "http-address", opt.HTTPAddress, "the address the HTTP server listens on")
	cmd.Flags().BoolVar(&opt.MetricsEnabled, "enable-metrics", opt.MetricsEnabled, "serve prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&opt.PprofEnabled, "enable-pprof", opt.PprofEnabled, "serve pprof on /debug/pprof")
	cmd.Flags().BoolVar(&opt.GinLogEnabled, "enable-gin-log", opt.GinLogEnabled, "log every HTTP request")
	cmd.Flags().StringSliceVar(&opt.GinLogSkipPath, "gin-log-skip-path", opt.GinLogSkipPath, "the paths which are not logged")
	cmd.Flags().DurationVar(&opt.ShutdownTimeout, "shutdown-timeout", opt.ShutdownTimeout, "how long in-flight requests are waited for on shutdown")
	cmd.Flags().StringSliceVar(&opt.Preload, "preload", opt.Preload, "services tracked as soon as the server starts, they are required for readiness")
	cmd.Flags().IntVar(&opt.PreloadWorkers, "preload-workers", opt.PreloadWorkers, "how many services are preloaded concurrently")
	return cmd
}

func serve(ropt *option.RootOption) error {
	opt := ropt.Server
	client, err := directory.New(*ropt.Directory)
	if err != nil {
		return err
	}
	defer client.Stop()

	r := tracker.NewRegister(client, tracker.WithPreloadWorkers(opt.PreloadWorkers))
	defer func() {
		if err := r.Close(); err != nil {
			klog.Errorf("Closing the register has an error: %v", err)
		}
	}()

	var preload []tracker.Identity
	for _, name := range utils.CleanNames(opt.Preload) {
		preload = append(preload, tracker.Identity(name))
	}
	if err := r.Preload(preload...); err != nil {
		return err
	}

	rt, err := router.NewRouter(&router.Options{
		GinLogEnabled:   opt.GinLogEnabled,
		GinLogSkipPath:  opt.GinLogSkipPath,
		PprofEnabled:    opt.PprofEnabled,
		MetricsEnabled:  opt.MetricsEnabled,
		Addr:            opt.HTTPAddress,
		ShutdownTimeout: opt.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	health := healthcheck.GetHealthHandler()
	healthcheck.AddServiceChecks(health, r, preload...)
	rt.AddRoutes("health", health.Routes())
	rt.AddRoutes("services", lookuphandler.NewHandler(r).Routes())

	stopCh := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		klog.Infof("Received signal %v, shutting down", sig)
		close(stopCh)
	}()

	components := &utils.Components{}
	components.Add(rt)
	return components.Start(stopCh)
}
