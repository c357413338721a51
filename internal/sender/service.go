package sender

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fakturo/invoice-mailer/internal/postmark"
)

// ErrNoDomainConfigured is returned by verify when the organization has no
// domain registered with the provider.
var ErrNoDomainConfigured = errors.New("no custom domain configured")

// DomainProvider is the subset of the provider API the workflow needs.
type DomainProvider interface {
	CreateDomain(ctx context.Context, name string) (*postmark.Domain, error)
	VerifyDomain(ctx context.Context, id int64) (*postmark.Domain, error)
	DeleteDomain(ctx context.Context, id int64) error
}

// IdentityStore persists sender identities.
type IdentityStore interface {
	Get(ctx context.Context, orgID uuid.UUID) (*Identity, error)
	Save(ctx context.Context, id *Identity) error
}

// Service orchestrates provider calls against the identity store:
// register, verify and tear down custom sending domains, and patch
// the non-domain settings.
type Service struct {
	store    IdentityStore
	provider DomainProvider
}

// NewService creates a new domain verification service.
func NewService(store IdentityStore, provider DomainProvider) *Service {
	return &Service{store: store, provider: provider}
}

// RegisterDomain registers the domain part of fromEmail with the provider and
// persists the new custom-domain identity, unverified. A previously
// registered provider domain is removed best-effort first; a stale or
// already-deleted remote record must not block replacing it.
func (s *Service) RegisterDomain(ctx context.Context, orgID uuid.UUID, fromEmail, fromName string) (*Identity, error) {
	if fromEmail == "" {
		return nil, fmt.Errorf("from_email is required")
	}
	if fromName == "" {
		return nil, fmt.Errorf("from_name is required")
	}
	if err := ValidateEmail(fromEmail); err != nil {
		return nil, err
	}

	identity, err := s.store.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if identity.ProviderDomainID != nil {
		if err := s.provider.DeleteDomain(ctx, *identity.ProviderDomainID); err != nil {
			log.Printf("Sender: removing superseded provider domain %d for org %s: %v",
				*identity.ProviderDomainID, orgID, err)
		}
	}

	domainName := EmailDomain(fromEmail)
	created, err := s.provider.CreateDomain(ctx, domainName)
	if err != nil {
		return nil, fmt.Errorf("registering domain %s: %w", domainName, err)
	}

	identity.Mode = ModeCustomDomain
	identity.CustomDomain = domainName
	identity.FromEmail = fromEmail
	identity.FromName = fromName
	identity.DomainVerified = false
	identity.DomainVerifiedAt = nil
	identity.ProviderDomainID = &created.ID
	identity.DNSRecords = recordsFromProvider(created.DNSRecords())

	if err := s.store.Save(ctx, identity); err != nil {
		// Undo the remote registration so it is not orphaned, then surface
		// the persistence error.
		if cleanupErr := s.provider.DeleteDomain(ctx, created.ID); cleanupErr != nil {
			log.Printf("Sender: cleaning up provider domain %d after failed save for org %s: %v",
				created.ID, orgID, cleanupErr)
		}
		return nil, err
	}

	return identity, nil
}

// VerifyResult is the outcome of a domain verification check.
type VerifyResult struct {
	Verified           bool        `json:"verified"`
	DKIMVerified       bool        `json:"signing_verified"`
	ReturnPathVerified bool        `json:"return_path_verified"`
	DNSRecords         []DNSRecord `json:"dns_records"`
}

// VerifyDomain re-checks the DNS proof records with the provider and persists
// the returned state. domain_verified_at is stamped only on the transition
// from unverified to verified.
func (s *Service) VerifyDomain(ctx context.Context, orgID uuid.UUID) (*VerifyResult, error) {
	identity, err := s.store.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if identity.ProviderDomainID == nil {
		return nil, ErrNoDomainConfigured
	}

	domain, err := s.provider.VerifyDomain(ctx, *identity.ProviderDomainID)
	if err != nil {
		return nil, fmt.Errorf("verifying domain %d: %w", *identity.ProviderDomainID, err)
	}

	wasVerified := identity.DomainVerified
	identity.DomainVerified = domain.Verified()
	identity.DNSRecords = recordsFromProvider(domain.DNSRecords())
	if !wasVerified && identity.DomainVerified {
		now := time.Now()
		identity.DomainVerifiedAt = &now
	}

	if err := s.store.Save(ctx, identity); err != nil {
		return nil, err
	}

	return &VerifyResult{
		Verified:           domain.Verified(),
		DKIMVerified:       domain.DKIMVerified,
		ReturnPathVerified: domain.ReturnPathVerified,
		DNSRecords:         identity.DNSRecords,
	}, nil
}

// RemoveDomain deletes the provider registration (best-effort, the remote
// record may already be gone) and resets the identity to the platform
// default, preserving reply-to and template settings.
func (s *Service) RemoveDomain(ctx context.Context, orgID uuid.UUID) (*Identity, error) {
	identity, err := s.store.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if identity.ProviderDomainID != nil {
		if err := s.provider.DeleteDomain(ctx, *identity.ProviderDomainID); err != nil {
			log.Printf("Sender: removing provider domain %d for org %s: %v",
				*identity.ProviderDomainID, orgID, err)
		}
	}

	identity.Mode = ModePlatformDefault
	identity.CustomDomain = ""
	identity.FromEmail = ""
	identity.FromName = ""
	identity.DomainVerified = false
	identity.DomainVerifiedAt = nil
	identity.ProviderDomainID = nil
	identity.DNSRecords = []DNSRecord{}

	if err := s.store.Save(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// SettingsPatch updates the non-domain settings of an identity. Nil fields
// are left unchanged; empty strings clear the field.
type SettingsPatch struct {
	Mode            *string `json:"mode,omitempty"`
	ReplyToEmail    *string `json:"reply_to_email,omitempty"`
	ReplyToName     *string `json:"reply_to_name,omitempty"`
	SubjectTemplate *string `json:"email_subject_template,omitempty"`
	BodyTemplate    *string `json:"email_body_template,omitempty"`
}

// UpdateSettings patches reply-to and template fields in place. Domain and
// verification fields are never touched here; switching mode back to
// custom_domain is rejected, only the register flow may establish it.
func (s *Service) UpdateSettings(ctx context.Context, orgID uuid.UUID, patch SettingsPatch) (*Identity, error) {
	identity, err := s.store.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if patch.Mode != nil {
		switch *patch.Mode {
		case ModePlatformDefault:
			identity.Mode = ModePlatformDefault
		case ModeCustomDomain:
			return nil, fmt.Errorf("invalid settings: mode %s can only be set by registering a domain", ModeCustomDomain)
		default:
			return nil, fmt.Errorf("invalid sender mode %q", *patch.Mode)
		}
	}
	if patch.ReplyToEmail != nil {
		if *patch.ReplyToEmail != "" {
			if err := ValidateEmail(*patch.ReplyToEmail); err != nil {
				return nil, err
			}
		}
		identity.ReplyToEmail = *patch.ReplyToEmail
	}
	if patch.ReplyToName != nil {
		identity.ReplyToName = *patch.ReplyToName
	}
	if patch.SubjectTemplate != nil {
		identity.SubjectTemplate = *patch.SubjectTemplate
	}
	if patch.BodyTemplate != nil {
		identity.BodyTemplate = *patch.BodyTemplate
	}

	if err := s.store.Save(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}
