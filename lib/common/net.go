package common

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const DefaultPort int = 12345

// Endpoint is the url of a node; the query carries the server options,
// see `network.NewHTTP2ServerConfigFromEndpoint`.
type Endpoint url.URL

func (e *Endpoint) String() string {
	return (&url.URL{
		Scheme: e.Scheme,
		Host:   e.Host,
		Path:   e.Path,
	}).String()
}

func (e *Endpoint) Query() url.Values {
	return (*url.URL)(e).Query()
}

func (e *Endpoint) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Endpoint) UnmarshalText(b []byte) error {
	p, err := ParseEndpoint(string(b))
	if err != nil {
		return err
	}
	*e = *p

	return nil
}

// ResolvePath returns the absolute url of `path` under the endpoint.
func (e *Endpoint) ResolvePath(path string) *url.URL {
	return (*url.URL)(e).ResolveReference(&url.URL{Path: path})
}

func ParseEndpoint(endpoint string) (u *Endpoint, err error) {
	var parsed *url.URL
	if parsed, err = url.Parse(endpoint); err != nil {
		return
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	case "":
		err = errors.New("missing scheme")
		return
	default:
		err = errors.Errorf("unsupported scheme, %q", parsed.Scheme)
		return
	}

	if len(parsed.Port()) < 1 {
		parsed.Host = fmt.Sprintf("%s:%d", parsed.Hostname(), DefaultPort)
	}

	if portInt, e := strconv.ParseInt(parsed.Port(), 10, 64); e != nil {
		err = errors.Wrap(e, "invalid port")
		return
	} else if portInt < 1 {
		err = errors.New("invalid port")
		return
	}

	if len(parsed.Hostname()) < 1 {
		parsed.Host = fmt.Sprintf("localhost:%s", parsed.Port())
	}
	parsed.Host = strings.ToLower(parsed.Host)

	u = (*Endpoint)(parsed)

	return
}

func GetUrlQuery(query url.Values, key, defaultValue string) string {
	v := query.Get(key)
	if len(v) > 0 {
		return v
	}

	return defaultValue
}
