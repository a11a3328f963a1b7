// Command webhook runs the admission validator: a fail-open, TLS-terminated
// HTTP handler invoked synchronously by the API server on workload
// create/update.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"
	"k8s.io/client-go/tools/clientcmd"
	runtimescheme "k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
	govadmission "github.com/stochastic-io/governance-platform/pkg/admission"
	govclient "github.com/stochastic-io/governance-platform/pkg/client"
	"github.com/stochastic-io/governance-platform/pkg/httpserver"
	"github.com/stochastic-io/governance-platform/pkg/logging"
	"github.com/stochastic-io/governance-platform/pkg/metrics"
)

func main() {
	var (
		kubeconfig string
		logFormat  string
		httpAddr   string
		certFile   string
		keyFile    string
	)
	flags := flag.NewFlagSet("webhook", flag.ExitOnError)
	flags.StringVar(&kubeconfig, "kubeconfig", "", "path to a kubeconfig, empty for in-cluster config")
	flags.StringVar(&httpAddr, "https-address", ":9443", "address the TLS admission listener binds to")
	flags.StringVar(&certFile, "tls-cert-file", "/tls/tls.crt", "path to the webhook's TLS certificate")
	flags.StringVar(&keyFile, "tls-private-key-file", "/tls/tls.key", "path to the webhook's TLS private key")
	logging.RegisterFlags(flags, &logFormat)
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := logging.Setup(logFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.WithName("webhook")

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
	govClient, err := govclient.NewForConfig(restConfig)
	if err != nil {
		log.Error(err, "failed to build governance client")
		os.Exit(1)
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		log.Error(err, "failed to load TLS certificate bundle")
		os.Exit(1)
	}

	scheme := runtimescheme.NewScheme()
	if err := govv1alpha1.AddToScheme(scheme); err != nil {
		log.Error(err, "failed to build scheme")
		os.Exit(1)
	}
	decoder := admission.NewDecoder(scheme)

	handler := &govadmission.Handler{
		Decoder: *decoder,
		Lookup:  govadmission.ClientLookup(govClient),
		Log:     log,
	}
	webhook := &admission.Webhook{Handler: handler}

	server := httpserver.NewTLS(httpAddr, metrics.Registry, nil, cert, httpserver.Route{
		Path:    "/validate",
		Handler: webhook,
	})

	if err := server.Run(ctx); err != nil {
		log.Error(err, "https server exited")
		os.Exit(1)
	}
	log.Info("webhook stopped")
}
