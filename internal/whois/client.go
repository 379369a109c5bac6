package whois

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/miekg/dns"
	"golang.org/x/time/rate"
)

const defaultResolver = "8.8.8.8:53"

// Client is the production Transport backed by the public WHOIS system.
// Lookups are rate limited because registries throttle and sometimes
// blacklist chatty clients.
type Client struct {
	whois    *whois.Client
	limiter  *rate.Limiter
	timeout  time.Duration
	resolver string
}

func NewClient(timeout time.Duration, ratePerMinute int) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if ratePerMinute <= 0 {
		ratePerMinute = 30
	}

	return &Client{
		whois:    whois.NewClient().SetTimeout(timeout),
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), 1),
		timeout:  timeout,
		resolver: defaultResolver,
	}
}

func (c *Client) Lookup(ctx context.Context, name string) (*Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Kind: KindTimeout, Err: err}
	}

	raw, err := c.whois.Whois(name)
	if err != nil {
		return nil, &TransportError{Kind: classifyNetErr(err), Err: err}
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil {
		return nil, &TransportError{Kind: KindProtocol, Err: err}
	}

	rec := &Record{}
	if parsed.Domain != nil {
		if t, ok := parseDate(parsed.Domain.ExpirationDate); ok {
			rec.ExpirationDates = append(rec.ExpirationDates, t)
		}
		if t, ok := parseDate(parsed.Domain.CreatedDate); ok {
			rec.RegistrationDates = append(rec.RegistrationDates, t)
		}
		for _, ns := range parsed.Domain.NameServers {
			if ns = strings.ToLower(strings.TrimSpace(ns)); ns != "" {
				rec.Nameservers = append(rec.Nameservers, ns)
			}
		}
		rec.Statuses = append(rec.Statuses, parsed.Domain.Status...)
	}
	if parsed.Registrar != nil && parsed.Registrar.Name != "" {
		rec.Registrars = append(rec.Registrars, parsed.Registrar.Name)
	}
	for _, contact := range []*whoisparser.Contact{parsed.Administrative, parsed.Registrant, parsed.Technical} {
		if contact != nil && contact.Email != "" {
			rec.AdminEmails = append(rec.AdminEmails, strings.ToLower(contact.Email))
		}
	}

	// Many registries redact nameservers from WHOIS; DNS still knows.
	if len(rec.Nameservers) == 0 {
		rec.Nameservers = c.lookupNS(ctx, name)
	}

	return rec, nil
}

func (c *Client) lookupNS(ctx context.Context, name string) []string {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeNS)

	client := &dns.Client{Timeout: c.timeout}
	resp, _, err := client.ExchangeContext(ctx, m, c.resolver)
	if err != nil || resp == nil {
		return nil
	}

	var servers []string
	for _, answer := range resp.Answer {
		if ns, ok := answer.(*dns.NS); ok {
			servers = append(servers, strings.ToLower(strings.TrimSuffix(ns.Ns, ".")))
		}
	}
	return servers
}

func classifyNetErr(err error) ErrorKind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

// whoisDateFormats covers the formats registries actually emit.
var whoisDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02 15:04:05",
	"2006.01.02",
	"2006/01/02",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range whoisDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
