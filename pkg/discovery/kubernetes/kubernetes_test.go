package kubernetes_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/dashsync/dashsync/pkg/discovery/kubernetes"
	"github.com/dashsync/dashsync/pkg/utils/try"
	"github.com/google/go-cmp/cmp"
	kubecore "k8s.io/api/core/v1"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

var quiet = log.New(io.Discard, "", 0)

const annotation = "dashsync.io/identifier"

type container struct {
	name    string
	running bool
}

func pod(namespace, name string, phase kubecore.PodPhase, annotations map[string]string, containers ...container) *kubecore.Pod {
	p := &kubecore.Pod{
		ObjectMeta: kubeapimeta.ObjectMeta{
			Namespace: namespace, Name: name, Annotations: annotations,
		},
		Status: kubecore.PodStatus{Phase: phase},
	}
	for _, c := range containers {
		p.Spec.Containers = append(p.Spec.Containers, kubecore.Container{Name: c.name})
		cs := kubecore.ContainerStatus{Name: c.name}
		if c.running {
			cs.State.Running = &kubecore.ContainerStateRunning{}
		} else {
			cs.State.Waiting = &kubecore.ContainerStateWaiting{Reason: "CrashLoopBackOff"}
		}
		p.Status.ContainerStatuses = append(p.Status.ContainerStatuses, cs)
	}
	return p
}

func TestListRunningContainerNames(t *testing.T) {
	objects := []runtime.Object{
		pod("media", "plex-0", kubecore.PodRunning, nil,
			container{name: "plex-server-media", running: true},
			container{name: "exporter", running: false},
		),
		pod("media", "sonarr-0", kubecore.PodRunning,
			map[string]string{annotation: "Sonarr-Media-"},
			container{name: "sonarr", running: true},
			container{name: "sidecar", running: true},
		),
		pod("media", "radarr-0", kubecore.PodPending, nil,
			container{name: "radarr", running: false},
		),
		pod("tools", "dozzle-0", kubecore.PodRunning,
			map[string]string{annotation: ""},
			container{name: "dozzle", running: true},
		),
		pod("default", "homer-0", kubecore.PodSucceeded, nil,
			container{name: "homer", running: false},
		),
	}

	for name, testcase := range map[string]struct {
		namespace  string
		annotation string
		then       []string
	}{
		"all namespaces, with annotation": {
			namespace: "", annotation: annotation,
			then: []string{"plex-server-media", "Sonarr-Media-", "dozzle"},
		},
		"one namespace": {
			namespace: "media", annotation: annotation,
			then: []string{"plex-server-media", "Sonarr-Media-"},
		},
		"without annotation, containers are reported": {
			namespace: "media", annotation: "",
			then: []string{"plex-server-media", "sonarr", "sidecar"},
		},
		"empty namespace": {
			namespace: "nowhere", annotation: annotation,
			then: []string{},
		},
	} {
		t.Run(name, func(t *testing.T) {
			client := fake.NewSimpleClientset(objects...)
			testee := kubernetes.New(client, testcase.namespace, testcase.annotation, kubernetes.WithLogger(quiet))

			actual := try.To(testee.ListRunningContainerNames(context.Background())).OrFatal(t)
			if diff := cmp.Diff(testcase.then, actual); diff != "" {
				t.Errorf("unexpected names (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("it asks for running pods only", func(t *testing.T) {
		client := fake.NewSimpleClientset()
		var selector string
		client.PrependReactor("list", "pods", func(action k8stesting.Action) (bool, runtime.Object, error) {
			selector = action.(k8stesting.ListAction).GetListRestrictions().Fields.String()
			return false, nil, nil
		})

		testee := kubernetes.New(client, "", annotation, kubernetes.WithLogger(quiet))
		try.To(testee.ListRunningContainerNames(context.Background())).OrFatal(t)

		if selector != "status.phase=Running" {
			t.Errorf("unexpected field selector: %s", selector)
		}
	})

	t.Run("it returns error from the cluster", func(t *testing.T) {
		fakeErr := errors.New("fake")
		client := fake.NewSimpleClientset()
		client.PrependReactor("list", "pods", func(k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, fakeErr
		})

		testee := kubernetes.New(client, "media", annotation, kubernetes.WithLogger(quiet))
		if _, err := testee.ListRunningContainerNames(context.Background()); !errors.Is(err, fakeErr) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
