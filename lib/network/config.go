package network

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"boscoin.io/feedback/lib/common"
)

type HTTP2ServerConfig struct {
	Endpoint *common.Endpoint
	Addr     string

	ReadTimeout,
	ReadHeaderTimeout,
	WriteTimeout,
	IdleTimeout time.Duration

	TLSCertFile,
	TLSKeyFile string
}

//
// NewHTTP2ServerConfigFromEndpoint reads the server options from the query
// of `endpoint`, like
// `https://0.0.0.0:12345?TLSCertFile=a.crt&TLSKeyFile=a.key&ReadTimeout=5s`.
//
func NewHTTP2ServerConfigFromEndpoint(endpoint *common.Endpoint) (config *HTTP2ServerConfig, err error) {
	query := endpoint.Query()

	timeouts := map[string]time.Duration{}
	for _, key := range []string{"ReadTimeout", "ReadHeaderTimeout", "WriteTimeout", "IdleTimeout"} {
		var d time.Duration
		if d, err = time.ParseDuration(common.GetUrlQuery(query, key, "0s")); err != nil {
			err = errors.Wrapf(err, "invalid '%s'", key)
			return
		}
		if d < 0 {
			err = errors.Errorf("invalid '%s'", key)
			return
		}
		timeouts[key] = d
	}

	tlsCertFile := query.Get("TLSCertFile")
	tlsKeyFile := query.Get("TLSKeyFile")

	if strings.ToLower(endpoint.Scheme) == "https" && (len(tlsCertFile) < 1 || len(tlsKeyFile) < 1) {
		err = errors.New("HTTPS needs `TLSCertFile` and `TLSKeyFile`")
		return
	}

	config = &HTTP2ServerConfig{
		Endpoint:          endpoint,
		Addr:              endpoint.Host,
		ReadTimeout:       timeouts["ReadTimeout"],
		ReadHeaderTimeout: timeouts["ReadHeaderTimeout"],
		WriteTimeout:      timeouts["WriteTimeout"],
		IdleTimeout:       timeouts["IdleTimeout"],
		TLSCertFile:       tlsCertFile,
		TLSKeyFile:        tlsKeyFile,
	}

	return
}

func (config HTTP2ServerConfig) IsHTTPS() bool {
	return len(config.TLSCertFile) > 0 && len(config.TLSKeyFile) > 0
}

func (config HTTP2ServerConfig) String() string {
	return string(common.MustMarshalJSON(config))
}
