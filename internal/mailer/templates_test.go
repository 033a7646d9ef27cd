package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/permitdesk/permitdesk/internal/docgen"
)

func TestComposeInvoice(t *testing.T) {
	msg := Compose(docgen.KindInvoice, "26-001", "client@acme.test", "PermitDesk", "invoice-abcd1234.pdf", []byte("%PDF"))

	require.Equal(t, "client@acme.test", msg.To)
	require.Equal(t, "Invoice 26-001 from PermitDesk", msg.Subject)
	require.Contains(t, msg.Text, "invoice 26-001")
	require.Contains(t, msg.HTML, "invoice 26-001")
	require.Equal(t, "invoice-abcd1234.pdf", msg.AttachmentName)
	require.NotEmpty(t, msg.Attachment)
}

func TestComposeProposal(t *testing.T) {
	msg := Compose(docgen.KindProposal, "Spring Upgrade", "client@acme.test", "PermitDesk", "proposal-9f3a2b1c.pdf", []byte("%PDF"))

	require.Equal(t, "Proposal Spring Upgrade from PermitDesk", msg.Subject)
	require.Contains(t, msg.Text, "for your review")
	require.Equal(t, "proposal-9f3a2b1c.pdf", msg.AttachmentName)
}
