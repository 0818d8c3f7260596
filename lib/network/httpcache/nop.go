package httpcache

import "net/http"

// NopClient is used when the cache is disabled.
type NopClient struct{}

func (NopClient) WrapHandlerFunc(handlerFunc http.HandlerFunc) http.HandlerFunc {
	return handlerFunc
}

func NewNopClient() *NopClient {
	return &NopClient{}
}
