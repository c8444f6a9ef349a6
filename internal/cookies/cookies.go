// Package cookies harvests browser cookies for a URL's domain and hands them
// to yt-dlp as a Netscape cookie file, for content gated behind a login.
package cookies

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/browserutils/kooky"
	// Register all supported browser cookie stores.
	_ "github.com/browserutils/kooky/browser/all"
	"github.com/rs/zerolog"
)

// Manager caches harvested cookies per domain and writes them out as
// Netscape cookie files.
type Manager struct {
	mu    sync.RWMutex
	files map[string]string
	dir   string
	log   zerolog.Logger
}

// NewManager builds a Manager writing cookie files under dir.
func NewManager(dir string, log zerolog.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cookie directory %q: %w", dir, err)
	}
	return &Manager{
		files: make(map[string]string),
		dir:   dir,
		log:   log,
	}, nil
}

// File returns the path of a Netscape cookie file for rawURL's domain, or an
// empty path when the browsers hold no cookies for it.
func (m *Manager) File(ctx context.Context, rawURL string) (string, error) {
	domain, err := baseDomain(rawURL)
	if err != nil {
		return "", fmt.Errorf("error extracting base domain for cookie grab: %w", err)
	}

	m.mu.RLock()
	if path, ok := m.files[domain]; ok {
		m.mu.RUnlock()
		return path, nil
	}
	m.mu.RUnlock()

	cookies := m.loadCookiesForDomain(ctx, domain)

	path := ""
	if len(cookies) > 0 {
		path = filepath.Join(m.dir, domain+".cookies.txt")
		if err := writeNetscapeFile(path, domain, cookies); err != nil {
			return "", err
		}
	}

	m.mu.Lock()
	m.files[domain] = path
	m.mu.Unlock()

	return path, nil
}

// loadCookiesForDomain reads valid cookies for the domain from any installed
// browser.
func (m *Manager) loadCookiesForDomain(ctx context.Context, domain string) []*http.Cookie {
	kookyCookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.Domain(domain))
	if err != nil {
		m.log.Debug().Err(err).Str("domain", domain).Msg("failed reading browser cookies")
		return nil
	}

	if len(kookyCookies) == 0 {
		m.log.Info().Str("domain", domain).Msg("no browser cookies found")
		return nil
	}

	m.log.Info().Int("count", len(kookyCookies)).Str("domain", domain).Msg("found browser cookies")
	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Secure:  c.Secure,
			Expires: c.Expires,
		}
	}
	return httpCookies
}

// writeNetscapeFile saves cookies in the Netscape format yt-dlp consumes.
func writeNetscapeFile(path, fallbackDomain string, cookies []*http.Cookie) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteString("# Netscape HTTP Cookie File\n# https://curl.haxx.se/rfc/cookie_spec.html\n# This is a generated file! Do not edit.\n\n"); err != nil {
		return err
	}

	for _, cookie := range cookies {
		domain := cookie.Domain
		if domain == "" {
			domain = fallbackDomain
		}
		if !strings.HasPrefix(domain, ".") && strings.Count(domain, ".") > 1 {
			domain = "." + domain
		}

		secure := "FALSE"
		if cookie.Secure {
			secure = "TRUE"
		}

		var expires int64
		if !cookie.Expires.IsZero() {
			expires = cookie.Expires.Unix()
		}

		if _, err := fmt.Fprintf(file, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			domain, "FALSE", cookie.Path, secure, expires, cookie.Name, cookie.Value); err != nil {
			return err
		}
	}
	return nil
}

// baseDomain reduces a URL to its registrable domain, e.g.
// "https://www.youtube.com/watch?v=x" -> "youtube.com".
func baseDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("no host in URL %q", rawURL)
	}

	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host, nil
	}
	return strings.Join(parts[len(parts)-2:], "."), nil
}
