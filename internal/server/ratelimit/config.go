package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/ats-resume-builder/internal/config"
)

// OptimizePath is the endpoint that reaches the LLM.
const OptimizePath = "/api/optimize-resume"

// HealthPath is never rate limited.
const HealthPath = "/api/health"

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // maximum requests per window
	Window time.Duration // refill window
	Burst  int           // bucket capacity, Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromSettings converts the application rate limit settings.
func FromSettings(s config.RateLimit) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   s.DefaultWindow,
		CleanupInterval: s.CleanupInterval,
		Whitelist:       ipSet(s.Whitelist),
		Blacklist:       ipSet(s.Blacklist),
		EndpointConfigs: EndpointConfigs(s),
	}
}

// EndpointConfigs returns the endpoint-specific limits. Optimization calls the
// LLM and gets the strict optimize budget. Extraction and export only convert
// documents locally and share a looser per-minute limit.
func EndpointConfigs(s config.RateLimit) []EndpointConfig {
	return []EndpointConfig{
		{Path: OptimizePath, Method: http.MethodPost, Limit: s.OptimizeLimit, Window: s.OptimizeWindow, Burst: s.OptimizeBurst},
		{Path: "/api/extract-text", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/export/", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// ipSet parses a list of IP addresses into a set, skipping blanks.
func ipSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
