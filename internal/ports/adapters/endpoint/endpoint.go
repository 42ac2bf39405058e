package endpoint

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Policy describes where an HTTP adapter may send requests.
type Policy struct {
	// Name is the configuration key reported in errors, e.g. OPENROUTER_BASE_URL.
	Name         string
	AllowedName  string
	DefaultURL   string
	DefaultHosts []string
}

func (p Policy) Normalize(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = p.DefaultURL
	}
	return strings.TrimRight(baseURL, "/")
}

// Validate accepts only absolute https URLs without userinfo, query or
// fragment whose host is allowed. An empty allow-list means DefaultHosts.
func (p Policy) Validate(baseURL string, allowedHosts []string) error {
	baseURL = p.Normalize(baseURL)

	u, err := url.Parse(baseURL)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", p.Name)
	}
	if !u.IsAbs() || u.Host == "" {
		return errors.Errorf("invalid %s %q: absolute URL with host is required", p.Name, baseURL)
	}
	if u.User != nil {
		return errors.Errorf("invalid %s %q: userinfo is not allowed", p.Name, baseURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return errors.Errorf("invalid %s %q: query and fragment are not allowed", p.Name, baseURL)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return errors.Errorf("invalid %s %q: host is required", p.Name, baseURL)
	}
	if strings.ToLower(u.Scheme) != "https" {
		return errors.Errorf("invalid %s %q: https is required", p.Name, baseURL)
	}

	allowed := p.allowedHosts(allowedHosts)
	if _, ok := allowed[host]; !ok {
		return errors.Errorf("invalid %s %q: host %q is not in %s", p.Name, baseURL, host, p.AllowedName)
	}
	return nil
}

func (p Policy) allowedHosts(allowedHosts []string) map[string]struct{} {
	out := normalizeHosts(allowedHosts)
	if len(out) == 0 {
		return normalizeHosts(p.DefaultHosts)
	}
	return out
}

func normalizeHosts(hosts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(v, "http://")
		v = strings.TrimPrefix(v, "https://")
		v = strings.Trim(v, "/")
		if v == "" {
			continue
		}
		if i := strings.Index(v, ":"); i >= 0 {
			v = v[:i]
		}
		out[v] = struct{}{}
	}
	return out
}

// SplitHosts parses a comma separated allow-list from the environment.
func SplitHosts(raw string) []string {
	var out []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
