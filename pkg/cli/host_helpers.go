package cli

import (
	"fmt"
	"net/url"
	"strings"
)

// normalizeHost checks that host is a bare http(s) base URL and returns it
// without surrounding space or a trailing slash.
func normalizeHost(host string) (string, error) {
	host = strings.TrimSpace(host)
	u, err := url.Parse(host)
	switch {
	case host == "":
		return "", fmt.Errorf("invalid host: empty")
	case err != nil:
		return "", fmt.Errorf("invalid host %q: %w", host, err)
	case u.Scheme != "http" && u.Scheme != "https":
		return "", fmt.Errorf("invalid host %q: scheme must be http or https", host)
	case u.Host == "":
		return "", fmt.Errorf("invalid host %q: missing host", host)
	case strings.Trim(u.Path, "/") != "":
		return "", fmt.Errorf("invalid host %q: the API path is added by the client, drop %q", host, u.Path)
	case u.RawQuery != "" || u.Fragment != "":
		return "", fmt.Errorf("invalid host %q: query and fragment are not allowed", host)
	}
	return strings.TrimRight(host, "/"), nil
}
