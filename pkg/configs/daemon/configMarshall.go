package daemon

import (
	"fmt"
	"net/url"
	"os"
	"time"

	cfg_hook "github.com/dashsync/dashsync/pkg/configs/hook"
)

const (
	DefaultInterval             = 10 * time.Minute
	DefaultPortainerEndpoint    = 2
	DefaultPortainerTimeout     = 30 * time.Second
	DefaultIdentifierAnnotation = "dashsync.io/identifier"

	// environment variables filling empty portainer url and token.
	EnvPortainerURL   = "PORTAINER_API_URL"
	EnvPortainerToken = "PORTAINER_TOKEN"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/daemon.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type DaemonConfigMarshall struct {
	Document  string                   `yaml:"document"`
	Interval  time.Duration            `yaml:"interval,omitempty"`
	Discovery *DiscoveryConfigMarshall `yaml:"discovery"`
	Server    *ServerConfigMarshall    `yaml:"server,omitempty"`
	Hooks     cfg_hook.WebHook         `yaml:"hooks,omitempty"`
}

var _ Marshalled[*DaemonConfig] = &DaemonConfigMarshall{}

func (d *DaemonConfigMarshall) trySeal(path string) *DaemonConfig {
	interval := d.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	server := d.Server
	if server == nil {
		server = &ServerConfigMarshall{}
	}
	return &DaemonConfig{
		document:  required(d.Document, path+".document"),
		interval:  positive(interval, path+".interval"),
		discovery: nonnil(d.Discovery, path+".discovery").trySeal(path + ".discovery"),
		server:    server.trySeal(path + ".server"),
		hooks:     d.Hooks,
	}
}

// Discovery of container names. Exactly one of them should be set.
type DiscoveryConfigMarshall struct {
	Portainer  *PortainerConfigMarshall  `yaml:"portainer,omitempty"`
	Kubernetes *KubernetesConfigMarshall `yaml:"kubernetes,omitempty"`
}

func (dm *DiscoveryConfigMarshall) trySeal(path string) *DiscoveryConfig {
	switch {
	case dm.Portainer != nil && dm.Kubernetes != nil:
		panic(path + ": only one of portainer or kubernetes can be set")
	case dm.Portainer != nil:
		return &DiscoveryConfig{portainer: dm.Portainer.trySeal(path + ".portainer")}
	case dm.Kubernetes != nil:
		return &DiscoveryConfig{kubernetes: dm.Kubernetes.trySeal(path + ".kubernetes")}
	}
	panic(path + ": one of portainer or kubernetes is required")
}

type PortainerConfigMarshall struct {
	URL      string        `yaml:"url"`
	Endpoint int           `yaml:"endpoint,omitempty"`
	Token    string        `yaml:"token,omitempty"`
	Username string        `yaml:"username,omitempty"`
	Password string        `yaml:"password,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

func (pm *PortainerConfigMarshall) trySeal(path string) *PortainerConfig {
	rawURL := pm.URL
	if rawURL == "" {
		rawURL = os.Getenv(EnvPortainerURL)
	}
	u, err := url.Parse(required(rawURL, path+".url"))
	if err != nil {
		panic(fmt.Errorf("%s.url can not be parsed: %w", path, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		panic(fmt.Sprintf("%s.url should be http or https: %s", path, rawURL))
	}

	endpoint := pm.Endpoint
	if endpoint == 0 {
		endpoint = DefaultPortainerEndpoint
	}
	timeout := pm.Timeout
	if timeout == 0 {
		timeout = DefaultPortainerTimeout
	}

	token := pm.Token
	if token == "" && pm.Username == "" {
		token = os.Getenv(EnvPortainerToken)
	}
	switch {
	case token != "" && pm.Username != "":
		panic(path + ": only one of token or username can be set")
	case token == "" && pm.Username == "":
		panic(path + ": token (or env " + EnvPortainerToken + ") or username is required")
	case pm.Username != "":
		required(pm.Password, path+".password")
	}

	return &PortainerConfig{
		url:      u,
		endpoint: positive(endpoint, path+".endpoint"),
		token:    token,
		username: pm.Username,
		password: pm.Password,
		timeout:  positive(timeout, path+".timeout"),
	}
}

type KubernetesConfigMarshall struct {
	Kubeconfig string `yaml:"kubeconfig,omitempty"`
	Namespace  string `yaml:"namespace,omitempty"`
	Annotation string `yaml:"annotation,omitempty"`
}

func (km *KubernetesConfigMarshall) trySeal(path string) *KubernetesConfig {
	annotation := km.Annotation
	if annotation == "" {
		annotation = DefaultIdentifierAnnotation
	}
	return &KubernetesConfig{
		kubeconfig: km.Kubeconfig,
		namespace:  km.Namespace,
		annotation: annotation,
	}
}

type ServerConfigMarshall struct {
	Listen string `yaml:"listen,omitempty"`
}

func (sm *ServerConfigMarshall) trySeal(string) *ServerConfig {
	return &ServerConfig{listen: sm.Listen}
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}

func positive[T int | time.Duration](v T, path string) T {
	if v <= 0 {
		panic(fmt.Sprintf("%s should be positive: %v", path, v))
	}
	return v
}
