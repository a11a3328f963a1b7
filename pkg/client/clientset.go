// Package client is a hand-written typed clientset for the governance
// platform's Policy and AuditResult custom resources, following
// client-go's own generated-client conventions (NewForConfig, a typed
// REST client per group/version, one typed interface per resource). The
// teacher's own generated clientset (referenced from its cmd/kyverno
// main) was not present in the retrieval pack, so this is written
// directly against client-go's REST client machinery instead of copied.
package client

import (
	"context"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/runtime/serializer"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"

	govv1alpha1 "github.com/stochastic-io/governance-platform/api/v1alpha1"
)

// Interface is the governance platform's typed clientset surface.
type Interface interface {
	Policies(namespace string) PolicyInterface
	AuditResults(namespace string) AuditResultInterface
}

// Clientset is the concrete Interface implementation, holding a single
// REST client configured for the governance.stochastic.io/v1alpha1 group.
type Clientset struct {
	restClient rest.Interface
}

// NewForConfig builds a Clientset from a REST config, registering this
// package's types into the shared client-go scheme codec factory.
func NewForConfig(cfg *rest.Config) (*Clientset, error) {
	config := *cfg
	config.GroupVersion = &govv1alpha1.SchemeGroupVersion
	config.APIPath = "/apis"
	config.NegotiatedSerializer = serializer.NewCodecFactory(Scheme).WithoutConversion()
	if config.UserAgent == "" {
		config.UserAgent = rest.DefaultKubernetesUserAgent()
	}

	restClient, err := rest.RESTClientFor(&config)
	if err != nil {
		return nil, err
	}
	return &Clientset{restClient: restClient}, nil
}

// Scheme is the runtime.Scheme carrying this package's types, built
// alongside client-go's own scheme so list/watch decoding works the same
// way the generated clientsets' does.
var Scheme = runtime.NewScheme()

func init() {
	if err := scheme.AddToScheme(Scheme); err != nil {
		panic(err)
	}
	if err := govv1alpha1.AddToScheme(Scheme); err != nil {
		panic(err)
	}
}

func (c *Clientset) Policies(namespace string) PolicyInterface {
	return &policyClient{client: c.restClient, ns: namespace}
}

func (c *Clientset) AuditResults(namespace string) AuditResultInterface {
	return &auditResultClient{client: c.restClient, ns: namespace}
}

// PolicyInterface has methods to work with Policy resources.
type PolicyInterface interface {
	Get(ctx context.Context, name string, opts metav1.GetOptions) (*govv1alpha1.Policy, error)
	List(ctx context.Context, opts metav1.ListOptions) (*govv1alpha1.PolicyList, error)
	Watch(ctx context.Context, opts metav1.ListOptions) (watch.Interface, error)
	Create(ctx context.Context, p *govv1alpha1.Policy, opts metav1.CreateOptions) (*govv1alpha1.Policy, error)
	Update(ctx context.Context, p *govv1alpha1.Policy, opts metav1.UpdateOptions) (*govv1alpha1.Policy, error)
	UpdateStatus(ctx context.Context, p *govv1alpha1.Policy, opts metav1.UpdateOptions) (*govv1alpha1.Policy, error)
	Delete(ctx context.Context, name string, opts metav1.DeleteOptions) error
	Patch(ctx context.Context, name string, pt types.PatchType, data []byte, opts metav1.PatchOptions, subresources ...string) (*govv1alpha1.Policy, error)
}

type policyClient struct {
	client rest.Interface
	ns     string
}

func (c *policyClient) Get(ctx context.Context, name string, opts metav1.GetOptions) (*govv1alpha1.Policy, error) {
	result := &govv1alpha1.Policy{}
	err := c.client.Get().Namespace(c.ns).Resource("policies").Name(name).VersionedParams(&opts, scheme.ParameterCodec).Do(ctx).Into(result)
	return result, err
}

func (c *policyClient) List(ctx context.Context, opts metav1.ListOptions) (*govv1alpha1.PolicyList, error) {
	result := &govv1alpha1.PolicyList{}
	err := c.client.Get().Namespace(c.ns).Resource("policies").VersionedParams(&opts, scheme.ParameterCodec).Do(ctx).Into(result)
	return result, err
}

func (c *policyClient) Watch(ctx context.Context, opts metav1.ListOptions) (watch.Interface, error) {
	opts.Watch = true
	return c.client.Get().Namespace(c.ns).Resource("policies").VersionedParams(&opts, scheme.ParameterCodec).Watch(ctx)
}

func (c *policyClient) Create(ctx context.Context, p *govv1alpha1.Policy, opts metav1.CreateOptions) (*govv1alpha1.Policy, error) {
	result := &govv1alpha1.Policy{}
	err := c.client.Post().Namespace(c.ns).Resource("policies").VersionedParams(&opts, scheme.ParameterCodec).Body(p).Do(ctx).Into(result)
	return result, err
}

func (c *policyClient) Update(ctx context.Context, p *govv1alpha1.Policy, opts metav1.UpdateOptions) (*govv1alpha1.Policy, error) {
	result := &govv1alpha1.Policy{}
	err := c.client.Put().Namespace(c.ns).Resource("policies").Name(p.Name).VersionedParams(&opts, scheme.ParameterCodec).Body(p).Do(ctx).Into(result)
	return result, err
}

// UpdateStatus goes through the status sub-resource, a distinct patch
// path from Update that cannot modify spec: finalizer and status updates
// fail and retry independently of each other.
func (c *policyClient) UpdateStatus(ctx context.Context, p *govv1alpha1.Policy, opts metav1.UpdateOptions) (*govv1alpha1.Policy, error) {
	result := &govv1alpha1.Policy{}
	err := c.client.Put().Namespace(c.ns).Resource("policies").Name(p.Name).SubResource("status").VersionedParams(&opts, scheme.ParameterCodec).Body(p).Do(ctx).Into(result)
	return result, err
}

func (c *policyClient) Delete(ctx context.Context, name string, opts metav1.DeleteOptions) error {
	return c.client.Delete().Namespace(c.ns).Resource("policies").Name(name).Body(&opts).Do(ctx).Error()
}

func (c *policyClient) Patch(ctx context.Context, name string, pt types.PatchType, data []byte, opts metav1.PatchOptions, subresources ...string) (*govv1alpha1.Policy, error) {
	result := &govv1alpha1.Policy{}
	err := c.client.Patch(pt).Namespace(c.ns).Resource("policies").Name(name).SubResource(subresources...).VersionedParams(&opts, scheme.ParameterCodec).Body(data).Do(ctx).Into(result)
	return result, err
}

// AuditResultInterface has methods to work with AuditResult resources.
// AuditResult has no status sub-resource and is immutable after creation,
// so there is deliberately no Update method here.
type AuditResultInterface interface {
	Get(ctx context.Context, name string, opts metav1.GetOptions) (*govv1alpha1.AuditResult, error)
	List(ctx context.Context, opts metav1.ListOptions) (*govv1alpha1.AuditResultList, error)
	Watch(ctx context.Context, opts metav1.ListOptions) (watch.Interface, error)
	Create(ctx context.Context, a *govv1alpha1.AuditResult, opts metav1.CreateOptions) (*govv1alpha1.AuditResult, error)
	Delete(ctx context.Context, name string, opts metav1.DeleteOptions) error
}

type auditResultClient struct {
	client rest.Interface
	ns     string
}

func (c *auditResultClient) Get(ctx context.Context, name string, opts metav1.GetOptions) (*govv1alpha1.AuditResult, error) {
	result := &govv1alpha1.AuditResult{}
	err := c.client.Get().Namespace(c.ns).Resource("auditresults").Name(name).VersionedParams(&opts, scheme.ParameterCodec).Do(ctx).Into(result)
	return result, err
}

func (c *auditResultClient) List(ctx context.Context, opts metav1.ListOptions) (*govv1alpha1.AuditResultList, error) {
	result := &govv1alpha1.AuditResultList{}
	err := c.client.Get().Namespace(c.ns).Resource("auditresults").VersionedParams(&opts, scheme.ParameterCodec).Do(ctx).Into(result)
	return result, err
}

func (c *auditResultClient) Watch(ctx context.Context, opts metav1.ListOptions) (watch.Interface, error) {
	opts.Watch = true
	return c.client.Get().Namespace(c.ns).Resource("auditresults").VersionedParams(&opts, scheme.ParameterCodec).Watch(ctx)
}

func (c *auditResultClient) Create(ctx context.Context, a *govv1alpha1.AuditResult, opts metav1.CreateOptions) (*govv1alpha1.AuditResult, error) {
	result := &govv1alpha1.AuditResult{}
	err := c.client.Post().Namespace(c.ns).Resource("auditresults").VersionedParams(&opts, scheme.ParameterCodec).Body(a).Do(ctx).Into(result)
	return result, err
}

func (c *auditResultClient) Delete(ctx context.Context, name string, opts metav1.DeleteOptions) error {
	return c.client.Delete().Namespace(c.ns).Resource("auditresults").Name(name).Body(&opts).Do(ctx).Error()
}

var _ schema.GroupVersion = govv1alpha1.SchemeGroupVersion
