package daemon

import (
	"net/url"
	"time"

	cfg_hook "github.com/dashsync/dashsync/pkg/configs/hook"
)

// Configuration of dashsync daemon.
//
// to get `DaemonConfig` instance, use `Unmarshal` or `LoadDaemonConfig`.
type DaemonConfig struct {
	document  string
	interval  time.Duration
	discovery *DiscoveryConfig
	server    *ServerConfig
	hooks     cfg_hook.WebHook
}

// Path to the Homer config.yml.
func (c *DaemonConfig) Document() string {
	return c.document
}

// Interval of passes. default = 10m
func (c *DaemonConfig) Interval() time.Duration {
	return c.interval
}

func (c *DaemonConfig) Discovery() *DiscoveryConfig {
	return c.discovery
}

func (c *DaemonConfig) Server() *ServerConfig {
	return c.server
}

// Hooks called before and after saving the document.
func (c *DaemonConfig) Hooks() cfg_hook.WebHook {
	return c.hooks
}

// Exactly one of Portainer() or Kubernetes() is not nil.
type DiscoveryConfig struct {
	portainer  *PortainerConfig
	kubernetes *KubernetesConfig
}

func (c *DiscoveryConfig) Portainer() *PortainerConfig {
	return c.portainer
}

func (c *DiscoveryConfig) Kubernetes() *KubernetesConfig {
	return c.kubernetes
}

type PortainerConfig struct {
	url      *url.URL
	endpoint int
	token    string
	username string
	password string
	timeout  time.Duration
}

// Base URL of Portainer API, like http://portainer:9000/api
func (c *PortainerConfig) URL() *url.URL {
	return c.url
}

// Portainer environment id. default = 2
func (c *PortainerConfig) Endpoint() int {
	return c.endpoint
}

// API access token. Empty when Username is set.
func (c *PortainerConfig) Token() string {
	return c.token
}

func (c *PortainerConfig) Username() string {
	return c.username
}

func (c *PortainerConfig) Password() string {
	return c.password
}

// Timeout of each request. default = 30s
func (c *PortainerConfig) Timeout() time.Duration {
	return c.timeout
}

type KubernetesConfig struct {
	kubeconfig string
	namespace  string
	annotation string
}

// Path to kubeconfig. Empty means the default loading rules, then in-cluster.
func (c *KubernetesConfig) Kubeconfig() string {
	return c.kubeconfig
}

// Namespace to watch. Empty means all namespaces.
func (c *KubernetesConfig) Namespace() string {
	return c.namespace
}

// Pod annotation which overrides container names.
func (c *KubernetesConfig) Annotation() string {
	return c.annotation
}

type ServerConfig struct {
	listen string
}

// Address to listen. Empty means no HTTP server.
func (c *ServerConfig) Listen() string {
	return c.listen
}
