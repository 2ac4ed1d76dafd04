// Package resolver fetches and caches a server's published ESNI key
// material from DNS. It is deliberately kept outside the ESNI core, which
// only ever sees the decoded bytes this package hands it.
package resolver

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// esniLabelPrefix is prepended to the target domain to form the TXT record
// name an ESNI-publishing server uses, e.g. "_esni.example.com".
const esniLabelPrefix = "_esni."

// Config tunes the resolver's DNS client and record cache. The zero value
// is usable: a 5-second query timeout, a 1-hour cache TTL, and unlimited
// reuse of a cached record within that window.
type Config struct {
	// Servers are "host:port" DNS resolvers tried in order. Defaults to
	// the system resolver's configured servers if empty (see systemServers).
	Servers []string

	// Timeout bounds a single DNS exchange. Defaults to 5s.
	Timeout time.Duration

	// CacheTTL is how long a fetched record is reused before a fresh
	// query is issued. Defaults to 1 hour.
	CacheTTL time.Duration

	// MaxCacheUsage caps how many times a cached entry is handed out
	// before it is force-refreshed, independent of TTL. Zero means
	// unlimited.
	MaxCacheUsage int64
}

func (c Config) withDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Hour
	}
	return c
}

// cacheEntry holds one domain's last-fetched ESNIKeys bytes.
type cacheEntry struct {
	bytes      []byte
	expiresAt  time.Time
	usageCount int64
}

func (e *cacheEntry) valid(maxUsage int64) bool {
	if time.Now().After(e.expiresAt) {
		return false
	}
	if maxUsage > 0 && e.usageCount >= maxUsage {
		return false
	}
	return true
}

// Resolver fetches `_esni.<domain>` TXT records and caches the decoded
// ESNIKeys bytes. Safe for concurrent use.
type Resolver struct {
	cfg    Config
	client *dns.Client

	mu    sync.RWMutex
	cache map[string]*cacheEntry
}

// New returns a Resolver configured per cfg. If cfg.Servers is empty, the
// system's configured resolvers (/etc/resolv.conf) are used.
func New(cfg Config) *Resolver {
	cfg = cfg.withDefaults()
	return &Resolver{
		cfg:    cfg,
		client: &dns.Client{Timeout: cfg.Timeout},
		cache:  make(map[string]*cacheEntry),
	}
}

// FetchESNIKeys returns the Base64-decoded ESNIKeys bytes published at
// `_esni.<domain>`, using the cache when a fresh entry is available.
// The returned bytes are exactly what esni.DecodeESNIKeys/esni.PrepareESNI
// expect as input.
func (r *Resolver) FetchESNIKeys(ctx context.Context, domain string) ([]byte, error) {
	if entry, ok := r.cached(domain); ok {
		slog.Debug("esni resolver cache hit", "domain", domain)
		return entry, nil
	}

	slog.Debug("esni resolver cache miss, querying DNS", "domain", domain)

	raw, err := r.queryTXT(ctx, esniLabelPrefix+domain)
	if err != nil {
		return nil, fmt.Errorf("resolver: query %s%s: %w", esniLabelPrefix, domain, err)
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("resolver: base64-decode TXT for %s: %w", domain, err)
	}

	r.store(domain, decoded)

	return decoded, nil
}

func (r *Resolver) cached(domain string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cache[domain]
	if !ok || !entry.valid(r.cfg.MaxCacheUsage) {
		return nil, false
	}

	entry.usageCount++

	return entry.bytes, true
}

func (r *Resolver) store(domain string, b []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[domain] = &cacheEntry{
		bytes:     b,
		expiresAt: time.Now().Add(r.cfg.CacheTTL),
	}
}

// queryTXT resolves name's TXT record, concatenating multiple strings in
// a single record in order, and returns the first record found.
func (r *Resolver) queryTXT(ctx context.Context, name string) (string, error) {
	servers := r.cfg.Servers
	if len(servers) == 0 {
		var err error
		servers, err = systemServers()
		if err != nil {
			return "", err
		}
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeTXT)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range servers {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		resp, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			continue
		}

		for _, rr := range resp.Answer {
			if txt, ok := rr.(*dns.TXT); ok && len(txt.Txt) > 0 {
				return strings.Join(txt.Txt, ""), nil
			}
		}

		lastErr = fmt.Errorf("no TXT answer from %s", server)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no DNS servers configured")
	}
	return "", lastErr
}

// systemServers reads the system resolver configuration for a list of
// "host:port" nameservers to query directly.
func systemServers() ([]string, error) {
	cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil {
		return nil, fmt.Errorf("resolver: read system resolv.conf: %w", err)
	}

	servers := make([]string, 0, len(cfg.Servers))
	for _, s := range cfg.Servers {
		servers = append(servers, net.JoinHostPort(s, cfg.Port))
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("resolver: no nameservers configured")
	}
	return servers, nil
}
