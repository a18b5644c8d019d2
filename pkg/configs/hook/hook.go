package hook

import (
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"
)

// WebHook is a pair of URL lists, called before and after a pass.
//
//	before: ["http://example.com/before"]
//	after: ["http://example.com/after"]
type WebHook struct {
	Before []*url.URL
	After  []*url.URL
}

// Empty reports whether wh has no URLs.
func (wh WebHook) Empty() bool {
	return len(wh.Before) == 0 && len(wh.After) == 0
}

func (wh *WebHook) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Before []string `yaml:"before"`
		After  []string `yaml:"after"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	before, err := parseURLs("before", raw.Before)
	if err != nil {
		return err
	}
	after, err := parseURLs("after", raw.After)
	if err != nil {
		return err
	}
	wh.Before, wh.After = before, after
	return nil
}

func (wh WebHook) MarshalYAML() (any, error) {
	raw := struct {
		Before []string `yaml:"before,omitempty"`
		After  []string `yaml:"after,omitempty"`
	}{}
	for _, u := range wh.Before {
		raw.Before = append(raw.Before, u.String())
	}
	for _, u := range wh.After {
		raw.After = append(raw.After, u.String())
	}
	return raw, nil
}

func parseURLs(key string, raws []string) ([]*url.URL, error) {
	urls := make([]*url.URL, len(raws))
	for i, u := range raws {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return nil, fmt.Errorf("%s[%d]: %s: scheme should be http or https", key, i, u)
		}
		urls[i] = parsed
	}
	return urls, nil
}
