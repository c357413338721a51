package postmark

import "fmt"

// DNS record kinds used by domain proof records
const (
	RecordTypeTXT   = "TXT"
	RecordTypeCNAME = "CNAME"
)

// Proof record purposes
const (
	PurposeDKIM       = "dkim"
	PurposeReturnPath = "return_path"
)

// Domain represents a sending domain registered with Postmark.
// Postmark proves domain ownership with exactly two DNS records:
// a DKIM TXT record and a Return-Path CNAME.
type Domain struct {
	ID                 int64  `json:"ID"`
	Name               string `json:"Name"`
	DKIMHost           string `json:"DKIMPendingHost"`
	DKIMTextValue      string `json:"DKIMPendingTextValue"`
	DKIMVerified       bool   `json:"DKIMVerified"`
	ReturnPathDomain   string `json:"ReturnPathDomain"`
	ReturnPathCNAME    string `json:"ReturnPathDomainCNAMEValue"`
	ReturnPathVerified bool   `json:"ReturnPathDomainVerified"`
}

// Verified reports whether both proof records have been verified.
func (d *Domain) Verified() bool {
	return d.DKIMVerified && d.ReturnPathVerified
}

// DNSRecord is one DNS record the domain owner must publish.
type DNSRecord struct {
	Type     string `json:"type"`
	Purpose  string `json:"purpose"`
	Host     string `json:"host"`
	Value    string `json:"value"`
	Verified bool   `json:"verified"`
}

// DNSRecords returns the two proof records for the domain.
func (d *Domain) DNSRecords() []DNSRecord {
	return []DNSRecord{
		{
			Type:     RecordTypeTXT,
			Purpose:  PurposeDKIM,
			Host:     d.DKIMHost,
			Value:    d.DKIMTextValue,
			Verified: d.DKIMVerified,
		},
		{
			Type:     RecordTypeCNAME,
			Purpose:  PurposeReturnPath,
			Host:     d.ReturnPathDomain,
			Value:    d.ReturnPathCNAME,
			Verified: d.ReturnPathVerified,
		},
	}
}

// Attachment is a file attached to an outgoing message.
// Content must be base64-encoded per the Postmark email API.
type Attachment struct {
	Name        string `json:"Name"`
	Content     string `json:"Content"`
	ContentType string `json:"ContentType"`
}

// Message is a single outgoing email.
type Message struct {
	From        string       `json:"From"`
	To          string       `json:"To"`
	ReplyTo     string       `json:"ReplyTo,omitempty"`
	Subject     string       `json:"Subject"`
	HTMLBody    string       `json:"HtmlBody"`
	TextBody    string       `json:"TextBody,omitempty"`
	Attachments []Attachment `json:"Attachments,omitempty"`
}

// APIError is an error response from the Postmark API.
type APIError struct {
	StatusCode int
	ErrorCode  int    `json:"ErrorCode"`
	Message    string `json:"Message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("postmark API error (status %d, code %d): %s", e.StatusCode, e.ErrorCode, e.Message)
}

// Postmark error code for a domain that does not exist.
const errCodeDomainNotFound = 510

// IsNotFound reports whether err is a provider response for a missing resource.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	return apiErr.StatusCode == 404 || apiErr.ErrorCode == errCodeDomainNotFound
}
