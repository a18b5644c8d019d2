// Package kubernetes lists running containers on a Kubernetes cluster.
//
// A pod annotated with the identifier annotation is reported as one name,
// the annotation value. Other pods are reported as the names of their running containers.
package kubernetes

import (
	"context"
	"log"
	"slices"
	"strings"

	xe "github.com/dashsync/dashsync/pkg/errors"
	xlog "github.com/dashsync/dashsync/pkg/logger"
	kubecore "k8s.io/api/core/v1"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	k8s "k8s.io/client-go/kubernetes"
)

type Discovery struct {
	client     k8s.Interface
	namespace  string
	annotation string
	logger     *log.Logger
}

type Option func(*Discovery) *Discovery

func WithLogger(l *log.Logger) Option {
	return func(d *Discovery) *Discovery {
		d.logger = l
		return d
	}
}

// New creates a Discovery.
//
// args:
//
// - client: kubernetes client.
//
// - namespace: where pods are listed. Empty means all namespaces.
//
// - annotation: pod annotation overriding container names. Empty means no overriding.
func New(client k8s.Interface, namespace string, annotation string, options ...Option) *Discovery {
	d := &Discovery{client: client, namespace: namespace, annotation: annotation}
	for _, opt := range options {
		d = opt(d)
	}
	d.logger = xlog.OrDefault(d.logger)
	return d
}

// ListRunningContainerNames returns names of running containers.
//
// Pods are ordered by namespace and name, and containers in a pod are in the order of its spec.
func (d *Discovery) ListRunningContainerNames(ctx context.Context) ([]string, error) {
	resp, err := d.client.CoreV1().Pods(d.namespace).List(ctx, kubeapimeta.ListOptions{
		FieldSelector: fields.OneTermEqualSelector("status.phase", string(kubecore.PodRunning)).String(),
	})
	if err != nil {
		return nil, xe.WrapWithNote("namespace="+d.namespace, err)
	}

	pods := resp.Items
	slices.SortFunc(pods, func(a, b kubecore.Pod) int {
		if c := strings.Compare(a.Namespace, b.Namespace); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	names := []string{}
	for _, pod := range pods {
		if pod.Status.Phase != kubecore.PodRunning || pod.DeletionTimestamp != nil {
			continue
		}
		if d.annotation != "" {
			if id, ok := pod.Annotations[d.annotation]; ok && id != "" {
				names = append(names, id)
				continue
			}
		}
		running := runningContainers(pod)
		if len(running) == 0 {
			d.logger.Printf("pod %s/%s has no running containers", pod.Namespace, pod.Name)
		}
		names = append(names, running...)
	}
	return names, nil
}

func runningContainers(pod kubecore.Pod) []string {
	running := map[string]bool{}
	for _, cs := range pod.Status.ContainerStatuses {
		running[cs.Name] = cs.State.Running != nil
	}

	names := []string{}
	for _, c := range pod.Spec.Containers {
		if running[c.Name] {
			names = append(names, c.Name)
		}
	}
	return names
}
