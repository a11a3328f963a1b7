// Command operator runs the reconcile operator: a workqueue controller
// over Policy resources that evaluates workloads, applies remediation
// patches in enforce mode, creates AuditResult records, and serves
// health and metrics endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
	apiextensionsclient "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	govclient "github.com/stochastic-io/governance-platform/pkg/client"
	"github.com/stochastic-io/governance-platform/pkg/httpserver"
	"github.com/stochastic-io/governance-platform/pkg/logging"
	"github.com/stochastic-io/governance-platform/pkg/metrics"
	"github.com/stochastic-io/governance-platform/pkg/policy"
	"github.com/stochastic-io/governance-platform/pkg/reconciler"
)

func main() {
	var (
		kubeconfig string
		logFormat  string
		httpAddr   string
		workers     int
		maxRetries  int
		clusterName string
	)
	flags := flag.NewFlagSet("operator", flag.ExitOnError)
	flags.StringVar(&kubeconfig, "kubeconfig", "", "path to a kubeconfig, empty for in-cluster config")
	flags.StringVar(&httpAddr, "http-address", ":8080", "address the healthz/readyz/metrics listener binds to")
	flags.IntVar(&workers, "workers", 2, "number of reconcile workers")
	flags.IntVar(&maxRetries, "max-retries", 10, "maximum retries per reconcile key before giving up")
	flags.StringVar(&clusterName, "cluster-name", "", "cluster name written into every AuditResult")
	logging.RegisterFlags(flags, &logFormat)
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := logging.Setup(logFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.WithName("operator")

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
	govClient, err := govclient.NewForConfig(restConfig)
	if err != nil {
		log.Error(err, "failed to build governance client")
		os.Exit(1)
	}

	apiserverClient, err := apiextensionsclient.NewForConfig(restConfig)
	if err != nil {
		log.Error(err, "failed to build apiextensions client")
		os.Exit(1)
	}
	if err := policy.CRDsInstalled(ctx, apiserverClient, policy.RequiredCRDNames...); err != nil {
		log.Error(err, "sanity checks failed")
		os.Exit(1)
	}

	controller := &reconciler.Controller{
		Gov:         govClient,
		KubeClient:  kubeClient,
		Log:         log,
		ClusterName: clusterName,
	}

	queue := reconciler.NewQueue()

	server := httpserver.New(httpAddr, metrics.Registry, controller.Ready)
	go func() {
		if err := server.Run(ctx); err != nil {
			log.Error(err, "http server exited")
		}
	}()

	reconciler.ListAndEnqueue(ctx, log, govClient, queue)

	go func() {
		for ctx.Err() == nil {
			reconciler.WatchAndEnqueue(ctx, log, govClient, queue)
		}
	}()

	go func() {
		t := time.NewTicker(reconciler.RequeuePeriod)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				reconciler.ListAndEnqueue(ctx, log, govClient, queue)
			}
		}
	}()

	synced := func() bool { return true }
	reconciler.Run(ctx, log, queue, workers, maxRetries, controller.Reconcile, controller.RecordPermanentFailure, synced)

	log.Info("operator stopped")
}
