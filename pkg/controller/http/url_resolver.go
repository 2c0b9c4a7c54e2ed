package http

import (
	"fmt"
	"net/http"
	"strings"
)

// GetFrontendURL returns the base URL of the console. configuredURL wins when
// set; otherwise the URL is rebuilt from proxy headers of the request.
func GetFrontendURL(r *http.Request, configuredURL string) string {
	if configuredURL != "" {
		return strings.TrimRight(configuredURL, "/")
	}

	// TLS is assumed to terminate at the reverse proxy
	scheme := "https"
	if proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); proto == "http" {
		scheme = proto
	}

	// Priority: Alt-Used (Cloud Run) > X-Forwarded-Host > Host
	host := r.Host
	if altUsed := r.Header.Get("Alt-Used"); altUsed != "" {
		host = altUsed
	} else if forwarded := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); forwarded != "" {
		host = forwarded
	}
	if host == "" {
		host = "localhost"
	}

	return fmt.Sprintf("%s://%s", scheme, host)
}

// firstHeaderValue returns the client-side entry of a comma separated proxy header
func firstHeaderValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}
