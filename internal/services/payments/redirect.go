package payments

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// RedirectPath is where Stripe sends the browser after a redirect-based payment.
const RedirectPath = "/payment-gateway/redirect"

// RedirectMode selects where the redirect resolver sends the browser.
type RedirectMode string

const (
	// RedirectFixed always uses the server-configured client URL.
	RedirectFixed RedirectMode = "fixed"
	// RedirectDest uses the caller-supplied dest parameter, gated by the allow-list.
	RedirectDest RedirectMode = "dest"
)

// RedirectPolicy resolves the client destination for a payment redirect.
type RedirectPolicy struct {
	Mode         RedirectMode
	FixedURL     string
	AllowedHosts []string
}

// Resolve returns the destination for a redirect request carrying dest.
// In fixed mode dest is ignored.
func (p RedirectPolicy) Resolve(dest string) (*url.URL, error) {
	switch p.Mode {
	case RedirectDest:
		if strings.TrimSpace(dest) == "" {
			return nil, NewError(KindInvalidInput, "Missing destination", nil)
		}
		return CheckDestination(dest, p.AllowedHosts)
	case RedirectFixed:
		if p.FixedURL == "" {
			return nil, NewError(KindMisconfiguration, "Redirect not configured", nil)
		}
		u, err := parseAbsolute(p.FixedURL)
		if err != nil {
			return nil, NewError(KindMisconfiguration, "Redirect not configured", err)
		}
		return u, nil
	default:
		return nil, NewError(KindMisconfiguration, "Redirect not configured", fmt.Errorf("unknown redirect mode %q", p.Mode))
	}
}

// CheckDestination parses a caller-supplied destination and, when allowed is
// non-empty, requires its hostname to be listed.
func CheckDestination(raw string, allowed []string) (*url.URL, error) {
	u, err := parseAbsolute(raw)
	if err != nil {
		return nil, NewError(KindInvalidInput, "Invalid destination", err)
	}
	if len(allowed) > 0 && !slices.Contains(allowed, strings.ToLower(u.Hostname())) {
		return nil, NewError(KindForbidden, "Redirect domain not allowed", fmt.Errorf("host %q not allow-listed", u.Hostname()))
	}
	return u, nil
}

// RedirectParams are the values forwarded onto the client destination.
type RedirectParams struct {
	Ref            string
	PaymentIntent  string
	RedirectStatus string
}

// ForwardTo returns dest with the non-empty params set on its query string.
// Query parameters already on dest are kept.
func ForwardTo(dest *url.URL, p RedirectParams) string {
	out := *dest
	q := out.Query()
	if p.PaymentIntent != "" {
		q.Set("payment_intent", p.PaymentIntent)
	}
	if p.RedirectStatus != "" {
		q.Set("redirect_status", p.RedirectStatus)
	}
	if p.Ref != "" {
		q.Set("ref", p.Ref)
	}
	out.RawQuery = q.Encode()
	return out.String()
}

// ReturnURL builds the Stripe return_url that points back at this service.
// dest is only included in dest mode.
func ReturnURL(base, ref, dest string) string {
	q := url.Values{}
	if dest != "" {
		q.Set("dest", dest)
	}
	q.Set("ref", ref)
	return strings.TrimRight(base, "/") + RedirectPath + "?" + q.Encode()
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("missing host")
	}
	return u, nil
}
