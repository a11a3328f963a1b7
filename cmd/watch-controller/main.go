// Command watch-controller runs the leader-elected watch controller: a
// process-local maintainer of cluster-wide and per-namespace health
// gauges built from the live pod event stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/stochastic-io/governance-platform/pkg/httpserver"
	"github.com/stochastic-io/governance-platform/pkg/leaderelection"
	"github.com/stochastic-io/governance-platform/pkg/logging"
	"github.com/stochastic-io/governance-platform/pkg/metrics"
	"github.com/stochastic-io/governance-platform/pkg/watch"
)

func main() {
	var (
		kubeconfig   string
		logFormat    string
		httpAddr     string
		operatorName string
		namespace    string
	)
	flags := flag.NewFlagSet("watch-controller", flag.ExitOnError)
	flags.StringVar(&kubeconfig, "kubeconfig", "", "path to a kubeconfig, empty for in-cluster config")
	flags.StringVar(&httpAddr, "http-address", ":8081", "address the healthz/readyz/metrics listener binds to")
	flags.StringVar(&operatorName, "operator-name", "governance-operator", "identity prefix for the leader-election lease name")
	flags.StringVar(&namespace, "namespace", "governance-system", "namespace the leader-election lease lives in")
	logging.RegisterFlags(flags, &logFormat)
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := logging.Setup(logFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.WithName("watch-controller")

	undo, err := maxprocs.Set(maxprocs.Logger(func(f string, a ...interface{}) { log.Info(fmt.Sprintf(f, a...)) }))
	if err != nil {
		log.Error(err, "failed to configure maxprocs")
	}
	defer undo()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	restConfig, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		log.Error(err, "failed to build rest config")
		os.Exit(1)
	}
	kubeClient, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		log.Error(err, "failed to build kubernetes client")
		os.Exit(1)
	}

	controller := watch.NewController(kubeClient, log)

	// Non-leader replicas keep passing /readyz so they stay admissible
	// while waiting for promotion. ready is nil here, not controller.Ready,
	// deliberately.
	server := httpserver.New(httpAddr, metrics.Registry, nil)
	go func() {
		if err := server.Run(ctx); err != nil {
			log.Error(err, "http server exited")
		}
	}()

	var runCtx context.Context
	var runCancel context.CancelFunc
	elector, err := leaderelection.New(
		watch.LeaseName(operatorName),
		namespace,
		kubeClient,
		func() {
			runCtx, runCancel = context.WithCancel(ctx)
			go controller.Run(runCtx)
		},
		func() {
			if runCancel != nil {
				runCancel()
			}
		},
		log,
	)
	if err != nil {
		log.Error(err, "failed to build leader elector")
		os.Exit(1)
	}

	elector.Run(ctx)
	log.Info("watch controller stopped")
}
