package sender

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fakturo/invoice-mailer/internal/postmark"
)

// Sender identity modes
const (
	ModePlatformDefault = "platform_default"
	ModeCustomDomain    = "custom_domain"
)

// DNSRecord is a persisted DNS proof record for a custom sending domain.
type DNSRecord struct {
	Type     string `json:"type"`     // TXT, CNAME
	Purpose  string `json:"purpose"`  // dkim, return_path
	Host     string `json:"host"`
	Value    string `json:"value"`
	Verified bool   `json:"verified"`
}

// DNSRecordsJSON is a helper type for scanning the JSON dns_records column.
type DNSRecordsJSON []DNSRecord

// Scan implements the sql.Scanner interface for DNSRecordsJSON.
func (d *DNSRecordsJSON) Scan(value interface{}) error {
	if value == nil {
		*d = []DNSRecord{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan type %T into DNSRecordsJSON", value)
	}
	return json.Unmarshal(b, d)
}

// Identity is the persisted outbound-email configuration of an organization.
//
// ProviderDomainID being set is the sole signal that a domain is registered
// with the provider and provider-side cleanup is owed. Switching mode back to
// platform_default keeps the domain fields so the organization can resume
// without re-registering; only the delete flow clears them.
type Identity struct {
	OrgID            uuid.UUID   `json:"org_id"`
	Mode             string      `json:"mode"`
	CustomDomain     string      `json:"custom_domain,omitempty"`
	FromEmail        string      `json:"from_email,omitempty"`
	FromName         string      `json:"from_name,omitempty"`
	DomainVerified   bool        `json:"domain_verified"`
	DomainVerifiedAt *time.Time  `json:"domain_verified_at,omitempty"`
	ProviderDomainID *int64      `json:"provider_domain_id,omitempty"`
	DNSRecords       []DNSRecord `json:"dns_records"`
	ReplyToEmail     string      `json:"reply_to_email,omitempty"`
	ReplyToName      string      `json:"reply_to_name,omitempty"`
	SubjectTemplate  string      `json:"email_subject_template,omitempty"`
	BodyTemplate     string      `json:"email_body_template,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// NewDefaultIdentity returns the platform-default identity for an organization
// that has never configured anything.
func NewDefaultIdentity(orgID uuid.UUID) *Identity {
	return &Identity{
		OrgID:      orgID,
		Mode:       ModePlatformDefault,
		DNSRecords: []DNSRecord{},
	}
}

// Validate checks the structural invariants of the identity.
func (id *Identity) Validate() error {
	switch id.Mode {
	case ModePlatformDefault:
		// Domain fields may be retained from an earlier custom_domain
		// configuration, so nothing to check here.
	case ModeCustomDomain:
		if id.CustomDomain == "" {
			return fmt.Errorf("custom_domain is required for mode %s", ModeCustomDomain)
		}
		if id.FromEmail == "" {
			return fmt.Errorf("from_email is required for mode %s", ModeCustomDomain)
		}
		if err := ValidateEmail(id.FromEmail); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid sender mode %q", id.Mode)
	}

	if id.DomainVerified {
		if id.ProviderDomainID == nil {
			return fmt.Errorf("domain_verified requires a provider domain registration")
		}
		for _, rec := range id.DNSRecords {
			if !rec.Verified {
				return fmt.Errorf("domain_verified requires all DNS records verified, %s record is not", rec.Purpose)
			}
		}
	}

	if id.ReplyToEmail != "" {
		if err := ValidateEmail(id.ReplyToEmail); err != nil {
			return err
		}
	}

	return nil
}

// UsableCustomSender reports whether the identity resolves to its custom
// from-address: custom mode, verified domain, from_email set. Anything else
// falls back to the platform default sender.
func (id *Identity) UsableCustomSender() bool {
	return id.Mode == ModeCustomDomain && id.DomainVerified && id.FromEmail != ""
}

// ValidateEmail checks that an address is RFC-shaped: a non-empty local part,
// one @, and a non-empty domain part containing a dot.
func ValidateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("invalid email address %q", email)
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("invalid email address %q", email)
	}
	return nil
}

// EmailDomain returns the domain part of an address.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// recordsFromProvider converts provider proof records into their persisted form.
func recordsFromProvider(records []postmark.DNSRecord) []DNSRecord {
	out := make([]DNSRecord, 0, len(records))
	for _, r := range records {
		out = append(out, DNSRecord{
			Type:     r.Type,
			Purpose:  r.Purpose,
			Host:     r.Host,
			Value:    r.Value,
			Verified: r.Verified,
		})
	}
	return out
}
