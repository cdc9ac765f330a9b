package config

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// healthPaths are cheap GET endpoints of the library application.
var healthPaths = []string{"/estatisticas", "/livros"}

// DetectReachableBaseURL returns initial when it answers, otherwise the first
// responsive localhost variant. When nothing answers initial is kept.
func DetectReachableBaseURL(initial string) string {
	start := time.Now()
	if Reachable(initial) {
		return initial
	}

	tried := []string{initial}
	candidates := []string{}

	if u, err := url.Parse(initial); err == nil {
		port := u.Port()
		if port == "" {
			port = "3000"
		}
		for _, p := range []string{port, "3000", "8080"} {
			candidates = append(candidates, "http://localhost:"+p, "http://127.0.0.1:"+p)
		}
	}

	seen := map[string]struct{}{initial: {}}
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		tried = append(tried, c)
		if Reachable(c) {
			slog.Info("base url auto-detected",
				slog.String("from", initial),
				slog.String("to", c),
				slog.Duration("elapsed", time.Since(start)))
			return c
		}
	}
	slog.Warn("base url unreachable, keeping configured value",
		slog.String("base_url", initial),
		slog.Any("tried", tried))
	return initial
}

// Reachable performs a TCP dial followed by a quick GET on a health path.
func Reachable(base string) bool {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Host
	if !strings.Contains(host, ":") {
		if u.Scheme == "https" {
			host += ":443"
		} else {
			host += ":80"
		}
	}
	d := net.Dialer{Timeout: 250 * time.Millisecond}
	conn, err := d.Dial("tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()

	client := &http.Client{Timeout: 800 * time.Millisecond}
	for _, path := range healthPaths {
		resp, err := client.Get(base + path)
		if err == nil {
			_ = resp.Body.Close()
			return true
		}
	}
	return false
}
