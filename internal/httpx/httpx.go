package httpx

import (
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when a caller does not configure one. Several quote
// hosts reject requests without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// New returns an http.Client with sane defaults for short polling requests
// against public quote endpoints.
func New(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       20,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// Headers merges default headers into h without overriding values that are
// already present. A missing User-Agent is filled with userAgent, or
// DefaultUserAgent when that is empty.
func Headers(h http.Header, userAgent string, defaults map[string]string) {
	if h.Get("User-Agent") == "" {
		if userAgent == "" {
			userAgent = DefaultUserAgent
		}
		h.Set("User-Agent", userAgent)
	}
	for k, v := range defaults {
		if h.Get(k) == "" {
			h.Set(k, v)
		}
	}
}
