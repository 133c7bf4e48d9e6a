package validators

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"
)

// EmailDomains checks that the domain of an email address resolves,
// through MX records or, failing that, A/AAAA records. Answers are kept
// for the life of the process.
type EmailDomains struct {
	timeout time.Duration
	lookup  func(ctx context.Context, domain string) bool

	mu    sync.Mutex
	known map[string]bool
}

func NewEmailDomains(timeout time.Duration) *EmailDomains {
	return &EmailDomains{
		timeout: timeout,
		lookup:  resolves,
		known:   map[string]bool{},
	}
}

func (d *EmailDomains) Valid(email string) bool {
	domain, ok := domainOf(email)
	if !ok {
		return false
	}

	d.mu.Lock()
	v, seen := d.known[domain]
	d.mu.Unlock()
	if seen {
		return v
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	v = d.lookup(ctx, domain)

	// Timeouts are not remembered; the next sign-up asks again.
	if ctx.Err() == nil {
		d.mu.Lock()
		d.known[domain] = v
		d.mu.Unlock()
	}
	return v
}

func domainOf(email string) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", false
	}
	domain := strings.ToLower(email[at+1:])
	if !strings.Contains(domain, ".") {
		return "", false
	}
	return domain, true
}

func resolves(ctx context.Context, domain string) bool {
	if mx, err := net.DefaultResolver.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}
	if ips, err := net.DefaultResolver.LookupIPAddr(ctx, domain); err == nil && len(ips) > 0 {
		return true
	}
	return false
}
