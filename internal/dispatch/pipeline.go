package dispatch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/fakturo/invoice-mailer/internal/invoice"
	"github.com/fakturo/invoice-mailer/internal/postmark"
	"github.com/fakturo/invoice-mailer/internal/sender"
)

// ErrValidation marks input problems the caller must correct.
var ErrValidation = errors.New("validation failed")

// ErrForbidden is returned when the invoice belongs to another organization.
var ErrForbidden = errors.New("invoice does not belong to this organization")

// InvoiceStore is the invoice persistence the pipeline needs.
type InvoiceStore interface {
	Get(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
	MarkSent(ctx context.Context, id uuid.UUID, recipientEmail string) error
}

// IdentityReader resolves the sender identity of an organization.
type IdentityReader interface {
	Get(ctx context.Context, orgID uuid.UUID) (*sender.Identity, error)
}

// DocumentFetcher retrieves rendered invoice documents by reference.
type DocumentFetcher interface {
	Fetch(ctx context.Context, reference string) ([]byte, error)
}

// Mailer sends a single email through the provider.
type Mailer interface {
	SendEmail(ctx context.Context, msg postmark.Message) error
}

// Dispatcher is the end-to-end send workflow: resolve the effective sender
// identity, assemble attachments from storage, send, then reconcile the
// invoice status.
type Dispatcher struct {
	invoices   InvoiceStore
	identities IdentityReader
	documents  DocumentFetcher
	mailer     Mailer

	platformFromEmail string
	platformFromName  string
}

// NewDispatcher creates a new dispatch pipeline.
func NewDispatcher(invoices InvoiceStore, identities IdentityReader, documents DocumentFetcher, mailer Mailer, platformFromEmail, platformFromName string) *Dispatcher {
	return &Dispatcher{
		invoices:          invoices,
		identities:        identities,
		documents:         documents,
		mailer:            mailer,
		platformFromEmail: platformFromEmail,
		platformFromName:  platformFromName,
	}
}

// SendRequest is one invoice send request.
type SendRequest struct {
	InvoiceID      uuid.UUID
	OrgID          uuid.UUID
	OrgDisplayName string
	RecipientEmail string
	Subject        string
	Body           string
}

// SendInvoice validates the request, resolves the from/reply-to identity,
// fetches the invoice documents, sends the email and advances the invoice to
// sent. Preconditions are checked in order; the first failure wins and no
// provider call is made before they all pass.
func (d *Dispatcher) SendInvoice(ctx context.Context, req SendRequest) error {
	inv, err := d.invoices.Get(ctx, req.InvoiceID)
	if err != nil {
		return err
	}
	if inv.OrgID != req.OrgID {
		return ErrForbidden
	}
	if inv.Status == invoice.StatusDraft {
		return fmt.Errorf("%w: draft invoices cannot be sent, finalize the invoice first", ErrValidation)
	}
	if req.RecipientEmail == "" {
		return fmt.Errorf("%w: recipient email is required", ErrValidation)
	}
	if req.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if err := sender.ValidateEmail(req.RecipientEmail); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	identity, err := d.identities.Get(ctx, req.OrgID)
	if err != nil {
		return err
	}

	fromEmail, fromName := d.resolveFrom(identity, req.OrgDisplayName)

	attachments, err := d.assembleAttachments(ctx, inv)
	if err != nil {
		return err
	}

	subject := RenderTemplate(req.Subject, inv)
	body := RenderTemplate(req.Body, inv)

	msg := postmark.Message{
		From:        FormatAddress(fromName, fromEmail),
		To:          req.RecipientEmail,
		Subject:     subject,
		HTMLBody:    HTMLFromText(body),
		TextBody:    body,
		Attachments: attachments,
	}
	if identity.ReplyToEmail != "" {
		msg.ReplyTo = FormatAddress(identity.ReplyToName, identity.ReplyToEmail)
	}

	if err := d.mailer.SendEmail(ctx, msg); err != nil {
		return fmt.Errorf("sending invoice %s: %w", inv.Number, err)
	}

	// The email has left the system and cannot be un-sent. A failed status
	// write is logged, not surfaced: a stale status beats telling the user
	// the send failed and provoking a duplicate.
	if err := d.invoices.MarkSent(ctx, inv.ID, req.RecipientEmail); err != nil {
		log.Printf("Dispatch: invoice %s sent to %s but status update failed: %v",
			inv.ID, req.RecipientEmail, err)
	}

	return nil
}

// resolveFrom picks the effective from-address. A custom identity is used
// only when its domain is verified; everything else falls back to the
// platform default address with the organization's display name.
func (d *Dispatcher) resolveFrom(identity *sender.Identity, orgDisplayName string) (email, name string) {
	if identity.UsableCustomSender() {
		return identity.FromEmail, identity.FromName
	}
	name = orgDisplayName
	if name == "" {
		name = d.platformFromName
	}
	return d.platformFromEmail, name
}

// assembleAttachments fetches the rendered PDF (mandatory) and the XML
// rendition (optional, failure logged and absorbed). An empty attachment set
// is rejected before any send is attempted.
func (d *Dispatcher) assembleAttachments(ctx context.Context, inv *invoice.Invoice) ([]postmark.Attachment, error) {
	var attachments []postmark.Attachment

	if inv.PDFReference == "" {
		return nil, fmt.Errorf("%w: invoice %s has no rendered documents", ErrValidation, inv.Number)
	}

	pdfData, err := d.documents.Fetch(ctx, inv.PDFReference)
	if err != nil {
		return nil, fmt.Errorf("fetching invoice PDF %s: %w", inv.PDFReference, err)
	}
	attachments = append(attachments, postmark.Attachment{
		Name:        fmt.Sprintf("invoice-%s.pdf", inv.Number),
		Content:     base64.StdEncoding.EncodeToString(pdfData),
		ContentType: "application/pdf",
	})

	if inv.XMLReference != "" {
		xmlData, err := d.documents.Fetch(ctx, inv.XMLReference)
		if err != nil {
			log.Printf("Dispatch: invoice %s XML attachment %s skipped: %v",
				inv.ID, inv.XMLReference, err)
		} else {
			attachments = append(attachments, postmark.Attachment{
				Name:        fmt.Sprintf("invoice-%s.xml", inv.Number),
				Content:     base64.StdEncoding.EncodeToString(xmlData),
				ContentType: "application/xml",
			})
		}
	}

	if len(attachments) == 0 {
		return nil, fmt.Errorf("%w: no attachments available for invoice %s", ErrValidation, inv.Number)
	}

	return attachments, nil
}

// FormatAddress renders a display-name email header value.
func FormatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
