package storage

import (
	"net/url"
	"path/filepath"

	"github.com/pkg/errors"
)

//
// Config describes where the ledger state lives.
//
//  * "file:///var/lib/feedback/db": leveldb in the given directory
//  * "memory://": in-memory leveldb, everything is lost at exit
//
type Config struct {
	Scheme string
	Path   string
}

func NewConfigFromString(s string) (*Config, error) {
	parsed, err := url.Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid storage uri, %q", s)
	}

	config := &Config{Scheme: parsed.Scheme}
	switch parsed.Scheme {
	case "memory":
	case "file":
		// "file://./db" puts "." in the host part
		path := parsed.Host + parsed.Path
		if len(path) < 1 {
			path = parsed.Opaque
		}
		if len(path) < 1 {
			return nil, errors.Errorf("file storage needs path, %q", s)
		}
		if path, err = filepath.Abs(path); err != nil {
			return nil, errors.Wrapf(err, "invalid storage path, %q", s)
		}
		config.Path = path
	default:
		return nil, errors.Errorf("unknown storage scheme, %q", parsed.Scheme)
	}

	return config, nil
}

func (c *Config) String() string {
	if c.Scheme == "memory" {
		return "memory://"
	}

	return (&url.URL{Scheme: c.Scheme, Path: c.Path}).String()
}
