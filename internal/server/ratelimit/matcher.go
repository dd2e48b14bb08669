package ratelimit

import (
	"strings"
)

// MatchEndpoint matches a request path and method to an endpoint
// configuration. Exact matches win; configs whose path ends with "/" act as
// prefix matches (e.g. "/discoveries/" covers "/discoveries/{id}/promote").
// Returns nil when nothing matches, which means the default limit applies.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// The health check is never limited.
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			return config
		}
	}

	return nil
}
