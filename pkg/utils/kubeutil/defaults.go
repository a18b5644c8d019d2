package kubeutil

import (
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// FindKubeconfig returns the path of kubeconfig, or "" if there are no kubeconfig files.
//
// # It searches kubeconfig from
//
// - `~/.kube/config`
//
// - environmental variable `KUBECONFIG`
//
// - the file found first from the kubeconfigSearchPath
//
// Later one has priority.
func FindKubeconfig(kubeconfigSearchPath ...string) string {
	kubeconfig := ""

	// priority 1 (least): ~/.kube/config
	if home := homedir.HomeDir(); home != "" {
		if p := filepath.Join(home, ".kube", "config"); isFile(p) {
			kubeconfig = p
		}
	}

	// priority 2: envvar KUBECONFIG
	if k := os.Getenv("KUBECONFIG"); k != "" && isFile(k) {
		kubeconfig = k
	}

	// priority 3 (most): search path
	for _, sp := range kubeconfigSearchPath {
		if sp != "" && isFile(sp) {
			kubeconfig = sp
			break
		}
	}

	return kubeconfig
}

// ConnectToK8s creates a client for the cluster found by FindKubeconfig.
//
// When no kubeconfig files are found, it tries to use in-cluster config.
func ConnectToK8s(kubeconfigSearchPath ...string) (*kubernetes.Clientset, error) {
	var config *rest.Config
	var err error
	if kubeconfig := FindKubeconfig(kubeconfigSearchPath...); kubeconfig == "" {
		// fallback: try in-cluster
		config, err = rest.InClusterConfig()
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, err
	}

	return kubernetes.NewForConfig(config)
}

func isFile(p string) bool {
	s, err := os.Stat(p)
	return err == nil && !s.IsDir()
}
