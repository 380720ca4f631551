package client

import (
	"net/http"
	"time"

	"github.com/chatpp/relay/common/config"
)

// RelayHTTPClient issues upstream chat-completion requests. Streaming bodies
// must not be bounded by a whole-request timeout, so only the response-header
// phase is limited. Reads of an open stream have no deadline of their own; a
// stalled upstream ends when the caller disconnects and cancels the request
// context.
var RelayHTTPClient *http.Client

// NonStreamHTTPClient bounds complete request/response exchanges.
var NonStreamHTTPClient *http.Client

func Init() {
	timeout := time.Duration(config.RelayTimeoutSec) * time.Second

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
	}

	RelayHTTPClient = &http.Client{
		Transport: transport,
	}
	NonStreamHTTPClient = &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
