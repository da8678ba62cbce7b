package allowlist

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Checker decides whether a sender's domain may submit mail to the dashboard
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new allowlist checker. An empty domain list admits
// every sender.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			normalized[domain] = struct{}{}
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized sender allowlist", zap.Strings("domains", domains))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Restricted reports whether the checker filters senders at all
func (c *Checker) Restricted() bool {
	return len(c.domains) > 0
}

// IsAllowed checks if the sender's domain is in the allowlist
func (c *Checker) IsAllowed(from string) bool {
	if !c.Restricted() {
		return true
	}

	domain := Domain(from)
	if domain == "" {
		return false
	}

	_, ok := c.domains[domain]
	if c.logger != nil {
		c.logger.Debug("Checked sender against allowlist",
			zap.String("domain", domain),
			zap.String("email", from),
			zap.Bool("allowed", ok))
	}
	return ok
}

// Domain extracts the lowercased domain of an address, accepting both bare
// addresses and "Name <user@host>" forms
func Domain(from string) string {
	address := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(address); err == nil {
		address = parsed.Address
	}
	address = strings.Trim(address, "<>")

	at := strings.LastIndex(address, "@")
	if at <= 0 || at == len(address)-1 {
		return ""
	}
	return strings.ToLower(address[at+1:])
}
