package mailer

import (
	"fmt"

	"github.com/permitdesk/permitdesk/internal/docgen"
)

// Compose builds the outgoing message for a generated document. The
// document kind selects the subject and body wording once, here, instead of
// sniffing fields downstream.
func Compose(kind docgen.Kind, number, recipient, companyName, fileName string, pdf []byte) Message {
	var subject, intro string
	switch kind {
	case docgen.KindProposal:
		subject = fmt.Sprintf("Proposal %s from %s", number, companyName)
		intro = fmt.Sprintf("Please find attached proposal %s for your review.", number)
	default:
		subject = fmt.Sprintf("Invoice %s from %s", number, companyName)
		intro = fmt.Sprintf("Please find attached invoice %s.", number)
	}

	text := fmt.Sprintf("Hello,\n\n%s\n\nIf you have any questions, just reply to this email.\n\nBest regards,\n%s\n", intro, companyName)
	html := fmt.Sprintf(
		`<p>Hello,</p><p>%s</p><p>If you have any questions, just reply to this email.</p><p>Best regards,<br>%s</p>`,
		intro, companyName,
	)

	return Message{
		To:             recipient,
		Subject:        subject,
		Text:           text,
		HTML:           html,
		AttachmentName: fileName,
		Attachment:     pdf,
	}
}
