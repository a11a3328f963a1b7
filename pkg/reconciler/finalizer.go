package reconciler

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// CleanupFinalizer is added to a Policy on its first reconcile, before the
// policy is evaluated and its status written, and removed once draining
// completes.
const CleanupFinalizer = "governance.stochastic.io/cleanup"

// AddFinalizer adds finalizer to o if not already present.
func AddFinalizer(o metav1.Object, finalizer string) bool {
	for _, f := range o.GetFinalizers() {
		if f == finalizer {
			return false
		}
	}
	o.SetFinalizers(append(o.GetFinalizers(), finalizer))
	return true
}

// RemoveFinalizer removes finalizer from o if present.
func RemoveFinalizer(o metav1.Object, finalizer string) bool {
	f := o.GetFinalizers()
	for i := 0; i < len(f); i++ {
		if f[i] == finalizer {
			f = append(f[:i], f[i+1:]...)
			o.SetFinalizers(f)
			return true
		}
	}
	return false
}

// ContainsFinalizer reports whether finalizer is present on o.
func ContainsFinalizer(o metav1.Object, finalizer string) bool {
	for _, f := range o.GetFinalizers() {
		if f == finalizer {
			return true
		}
	}
	return false
}
