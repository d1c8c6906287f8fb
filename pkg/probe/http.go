package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// httpProbe implements both the HTTP and HTTPS protocols; tls selects
// which scheme is dialed and whether certificate verification is
// skipped (server workers in this system serve a self-signed
// well-known certificate).
type httpProbe struct {
	tls bool
}

func (p *httpProbe) Ping(ctx context.Context, t Target, rec Recorder) {
	client := p.newClient(t.RequestCount > 1)
	defer client.CloseIdleConnections()

	url := p.url(t)
	for i := 0; i < t.RequestCount; i++ {
		succeeded := p.attempt(ctx, client, url, t)
		record(rec, t, succeeded)
	}
}

func (p *httpProbe) url(t Target) string {
	scheme := "http"
	if p.tls {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, t.Addr())
}

func (p *httpProbe) newClient(reuse bool) *http.Client {
	transport := &http.Transport{
		DisableKeepAlives: !reuse,
	}
	if p.tls {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{
		Timeout:   dialTimeout,
		Transport: transport,
	}
}

func (p *httpProbe) attempt(ctx context.Context, client *http.Client, url string, t Target) bool {
	if err := p.roundTrip(ctx, client, url); err != nil {
		logAttempt(ctx, t.Protocol, t, err, 1)
		time.Sleep(time.Second)
		if err := p.roundTrip(ctx, client, url); err != nil {
			logAttempt(ctx, t.Protocol, t, err, 2)
			return false
		}
	}
	return true
}

func (p *httpProbe) roundTrip(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if client.Transport.(*http.Transport).DisableKeepAlives {
		req.Close = true
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe: HTTP request failed with status %d", resp.StatusCode)
	}
	return nil
}
