package sender

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"billing@acme.test", false},
		{"a.b+tag@sub.example.co", false},
		{"", true},
		{"noatsign", true},
		{"@acme.test", true},
		{"billing@", true},
		{"billing@localhost", true},
		{"billing@.acme.test", true},
		{"billing@acme.test.", true},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
		}
	}
}

func TestEmailDomain(t *testing.T) {
	if got := EmailDomain("Billing@Acme.Test"); got != "acme.test" {
		t.Errorf("EmailDomain() = %q, want %q", got, "acme.test")
	}
	if got := EmailDomain("no-at"); got != "" {
		t.Errorf("EmailDomain(no-at) = %q, want empty", got)
	}
}

func TestIdentityValidate(t *testing.T) {
	orgID := uuid.New()
	providerID := int64(17)
	now := time.Now()

	tests := []struct {
		name    string
		mutate  func(*Identity)
		wantErr bool
	}{
		{
			"platform default empty",
			func(id *Identity) {},
			false,
		},
		{
			"platform default retains domain fields",
			func(id *Identity) {
				id.CustomDomain = "acme.test"
				id.FromEmail = "billing@acme.test"
			},
			false,
		},
		{
			"custom domain complete",
			func(id *Identity) {
				id.Mode = ModeCustomDomain
				id.CustomDomain = "acme.test"
				id.FromEmail = "billing@acme.test"
			},
			false,
		},
		{
			"custom domain without domain",
			func(id *Identity) {
				id.Mode = ModeCustomDomain
				id.FromEmail = "billing@acme.test"
			},
			true,
		},
		{
			"custom domain without from_email",
			func(id *Identity) {
				id.Mode = ModeCustomDomain
				id.CustomDomain = "acme.test"
			},
			true,
		},
		{
			"unknown mode",
			func(id *Identity) { id.Mode = "shared" },
			true,
		},
		{
			"verified without provider registration",
			func(id *Identity) { id.DomainVerified = true },
			true,
		},
		{
			"verified with unverified record",
			func(id *Identity) {
				id.DomainVerified = true
				id.DomainVerifiedAt = &now
				id.ProviderDomainID = &providerID
				id.DNSRecords = []DNSRecord{
					{Type: "TXT", Purpose: "dkim", Verified: true},
					{Type: "CNAME", Purpose: "return_path", Verified: false},
				}
			},
			true,
		},
		{
			"verified with all records verified",
			func(id *Identity) {
				id.Mode = ModeCustomDomain
				id.CustomDomain = "acme.test"
				id.FromEmail = "billing@acme.test"
				id.DomainVerified = true
				id.DomainVerifiedAt = &now
				id.ProviderDomainID = &providerID
				id.DNSRecords = []DNSRecord{
					{Type: "TXT", Purpose: "dkim", Verified: true},
					{Type: "CNAME", Purpose: "return_path", Verified: true},
				}
			},
			false,
		},
		{
			"malformed reply-to",
			func(id *Identity) { id.ReplyToEmail = "not-an-address" },
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := NewDefaultIdentity(orgID)
			tt.mutate(identity)
			err := identity.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUsableCustomSender(t *testing.T) {
	providerID := int64(17)

	base := func() *Identity {
		return &Identity{
			Mode:             ModeCustomDomain,
			CustomDomain:     "acme.test",
			FromEmail:        "billing@acme.test",
			DomainVerified:   true,
			ProviderDomainID: &providerID,
		}
	}

	if !base().UsableCustomSender() {
		t.Error("verified custom identity should be usable")
	}

	unverified := base()
	unverified.DomainVerified = false
	if unverified.UsableCustomSender() {
		t.Error("unverified identity must fall back to the platform default")
	}

	platform := base()
	platform.Mode = ModePlatformDefault
	if platform.UsableCustomSender() {
		t.Error("platform_default identity must not resolve to the custom address")
	}

	noFrom := base()
	noFrom.FromEmail = ""
	if noFrom.UsableCustomSender() {
		t.Error("identity without from_email must not be usable")
	}
}
