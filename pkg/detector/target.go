package detector

import (
	"net/url"
	"strconv"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
)

// Target is the fully-resolved scan target: scheme, host, port, and the
// request path every probe issues its requests against. Derived once from
// the user-supplied URL and treated as immutable for the rest of the scan,
// per spec §3's lifecycle rule.
type Target struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

// URL reconstructs the canonical target URL for Finding.URL / stdout
// markers, independent of whatever path variant a probe used internally.
func (t Target) URL() string {
	u := url.URL{Scheme: t.Scheme, Host: t.Host, Path: t.Path}
	if t.Path == "" {
		u.Path = "/"
	}
	if (t.Scheme == "http" && t.Port != 80) || (t.Scheme == "https" && t.Port != 443) {
		u.Host = t.Host + ":" + strconv.Itoa(t.Port)
	}
	return u.String()
}

// ParseTarget parses a user-supplied URL into a Target, defaulting the port
// by scheme (80 for http, 443 for https) when none is given.
func ParseTarget(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, errors.NewInputError("invalid target URL: " + err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Target{}, errors.NewInputError("unsupported scheme: " + u.Scheme)
	}
	if u.Host == "" {
		return Target{}, errors.NewInputError("target URL has no host")
	}

	host := u.Hostname()
	port := 80
	if u.Scheme == "https" {
		port = 443
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Target{}, errors.NewInputError("invalid port in target URL: " + p)
		}
		port = n
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return Target{Scheme: u.Scheme, Host: host, Port: port, Path: path}, nil
}
