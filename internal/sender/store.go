package sender

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store reads and writes sender identities. One row per organization.
type Store struct {
	db *sql.DB
}

// NewStore creates a new identity store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get loads the sender identity for an organization. An organization that has
// never configured anything gets the platform-default identity.
func (s *Store) Get(ctx context.Context, orgID uuid.UUID) (*Identity, error) {
	var id Identity
	var customDomain, fromEmail, fromName sql.NullString
	var replyToEmail, replyToName sql.NullString
	var subjectTemplate, bodyTemplate sql.NullString
	var verifiedAt sql.NullTime
	var providerDomainID sql.NullInt64
	var dnsRecords DNSRecordsJSON

	err := s.db.QueryRowContext(ctx, `
		SELECT org_id, mode, custom_domain, from_email, from_name,
		       domain_verified, domain_verified_at, provider_domain_id,
		       COALESCE(dns_records, '[]'), reply_to_email, reply_to_name,
		       email_subject_template, email_body_template, created_at, updated_at
		FROM sender_identities
		WHERE org_id = $1
	`, orgID).Scan(
		&id.OrgID,
		&id.Mode,
		&customDomain,
		&fromEmail,
		&fromName,
		&id.DomainVerified,
		&verifiedAt,
		&providerDomainID,
		&dnsRecords,
		&replyToEmail,
		&replyToName,
		&subjectTemplate,
		&bodyTemplate,
		&id.CreatedAt,
		&id.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return NewDefaultIdentity(orgID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying sender identity: %w", err)
	}

	id.CustomDomain = customDomain.String
	id.FromEmail = fromEmail.String
	id.FromName = fromName.String
	id.ReplyToEmail = replyToEmail.String
	id.ReplyToName = replyToName.String
	id.SubjectTemplate = subjectTemplate.String
	id.BodyTemplate = bodyTemplate.String
	id.DNSRecords = dnsRecords
	if verifiedAt.Valid {
		t := verifiedAt.Time
		id.DomainVerifiedAt = &t
	}
	if providerDomainID.Valid {
		v := providerDomainID.Int64
		id.ProviderDomainID = &v
	}

	return &id, nil
}

// Save upserts the sender identity of an organization.
func (s *Store) Save(ctx context.Context, id *Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}

	records := id.DNSRecords
	if records == nil {
		records = []DNSRecord{}
	}
	dnsJSON, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling DNS records: %w", err)
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sender_identities (
			org_id, mode, custom_domain, from_email, from_name,
			domain_verified, domain_verified_at, provider_domain_id, dns_records,
			reply_to_email, reply_to_name, email_subject_template, email_body_template,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		ON CONFLICT (org_id) DO UPDATE SET
			mode = $2, custom_domain = $3, from_email = $4, from_name = $5,
			domain_verified = $6, domain_verified_at = $7, provider_domain_id = $8,
			dns_records = $9, reply_to_email = $10, reply_to_name = $11,
			email_subject_template = $12, email_body_template = $13, updated_at = $14
	`, id.OrgID, id.Mode,
		nullableString(id.CustomDomain), nullableString(id.FromEmail), nullableString(id.FromName),
		id.DomainVerified, id.DomainVerifiedAt, id.ProviderDomainID, dnsJSON,
		nullableString(id.ReplyToEmail), nullableString(id.ReplyToName),
		nullableString(id.SubjectTemplate), nullableString(id.BodyTemplate),
		now)
	if err != nil {
		return fmt.Errorf("saving sender identity: %w", err)
	}

	id.UpdatedAt = now
	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
