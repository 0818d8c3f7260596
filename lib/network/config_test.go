package network

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boscoin.io/feedback/lib/common"
)

func TestHTTP2ServerConfigHTTPSAndTLS(t *testing.T) {
	{ // HTTPS + TLSCertFile + TLSKeyFile
		queryValues := url.Values{}
		queryValues.Set("TLSCertFile", "faketlscert")
		queryValues.Set("TLSKeyFile", "faketlskey")

		endpoint := &common.Endpoint{Scheme: "https", Host: "localhost:12345", RawQuery: queryValues.Encode()}

		config, err := NewHTTP2ServerConfigFromEndpoint(endpoint)
		require.NoError(t, err)
		require.True(t, config.IsHTTPS())
		require.Equal(t, "localhost:12345", config.Addr)
	}

	{ // HTTPS + TLSCertFile
		queryValues := url.Values{}
		queryValues.Set("TLSCertFile", "faketlscert")

		endpoint := &common.Endpoint{Scheme: "https", Host: "localhost:12345", RawQuery: queryValues.Encode()}

		_, err := NewHTTP2ServerConfigFromEndpoint(endpoint)
		require.Error(t, err)
	}

	{ // HTTPS + TLSKeyFile
		queryValues := url.Values{}
		queryValues.Set("TLSKeyFile", "faketlskey")

		endpoint := &common.Endpoint{Scheme: "https", Host: "localhost:12345", RawQuery: queryValues.Encode()}

		_, err := NewHTTP2ServerConfigFromEndpoint(endpoint)
		require.Error(t, err)
	}

	{ // HTTP
		endpoint := &common.Endpoint{Scheme: "http", Host: "localhost:12345"}

		config, err := NewHTTP2ServerConfigFromEndpoint(endpoint)
		require.NoError(t, err)
		require.False(t, config.IsHTTPS())
	}
}

func TestHTTP2ServerConfigTimeouts(t *testing.T) {
	{
		endpoint, err := common.ParseEndpoint("http://localhost:12345?ReadTimeout=3s&IdleTimeout=1m")
		require.NoError(t, err)

		config, err := NewHTTP2ServerConfigFromEndpoint(endpoint)
		require.NoError(t, err)
		require.Equal(t, 3*time.Second, config.ReadTimeout)
		require.Equal(t, time.Minute, config.IdleTimeout)
		require.Equal(t, time.Duration(0), config.WriteTimeout)
	}

	{ // bad duration
		endpoint, err := common.ParseEndpoint("http://localhost:12345?WriteTimeout=showme")
		require.NoError(t, err)

		_, err = NewHTTP2ServerConfigFromEndpoint(endpoint)
		require.Error(t, err)
	}

	{ // negative duration
		endpoint, err := common.ParseEndpoint("http://localhost:12345?ReadHeaderTimeout=-1s")
		require.NoError(t, err)

		_, err = NewHTTP2ServerConfigFromEndpoint(endpoint)
		require.Error(t, err)
	}
}
