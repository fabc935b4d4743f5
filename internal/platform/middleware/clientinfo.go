package middleware

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"riskgate/pkg/requestcontext"
)

// ClientInfo extracts the client IP and a coarse user-agent fingerprint
// (browser/os/platform) into the request context for logging. The raw
// User-Agent string is not logged; the fingerprint is enough to group
// traffic without carrying arbitrary client-controlled text into the logs.
func ClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := requestcontext.ClientMetadata{
			IP:          parseRemoteAddr(r.RemoteAddr),
			Fingerprint: Fingerprint(r.Header.Get("User-Agent")),
		}
		ctx := requestcontext.WithClientMetadata(r.Context(), meta)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Fingerprint reduces a User-Agent string to "browser/os/platform".
func Fingerprint(userAgentString string) string {
	if userAgentString == "" {
		return ""
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	browser = strings.ToLower(strings.TrimSpace(browser))
	if browser == "" {
		browser = "unknown"
	}

	os := strings.ToLower(strings.TrimSpace(ua.OS()))
	if os == "" {
		os = "unknown"
	}

	platform := "desktop"
	if ua.Mobile() {
		platform = "mobile"
	} else if ua.Bot() {
		platform = "bot"
	}

	return browser + "/" + os + "/" + platform
}

// parseRemoteAddr extracts the IP from RemoteAddr (strips port).
func parseRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return "unknown"
	}

	// Handle IPv6 with brackets: [::1]:port
	if strings.HasPrefix(remoteAddr, "[") {
		if idx := strings.LastIndex(remoteAddr, "]:"); idx != -1 {
			return remoteAddr[1:idx]
		}
		return strings.Trim(strings.Split(remoteAddr, "]:")[0], "[]")
	}

	// Handle IPv4: 127.0.0.1:port
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		return remoteAddr[:idx]
	}

	return remoteAddr
}
