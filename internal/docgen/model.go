package docgen

import "time"

// Kind discriminates the document variant up front so downstream consumers
// never have to sniff fields.
type Kind string

const (
	KindInvoice  Kind = "invoice"
	KindProposal Kind = "proposal"
)

// Company is the sender identity printed in the header band.
type Company struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	LogoPath string
}

// InfoBox is a titled block of lines rendered side by side below the header.
type InfoBox struct {
	Title string
	Lines []string
}

// LineItem is one row of the itemized table. A nil unit price renders as
// "TBD" rather than zero.
type LineItem struct {
	Description string
	Quantity    float64
	UnitPrice   *float64
	Amount      *float64
}

// Document is the fully resolved view model handed to the generator. All
// lookups happen before rendering; the generator touches no repository.
type Document struct {
	Kind       Kind
	Number     string
	Title      string
	Date       time.Time
	ValidUntil *time.Time
	Company    Company
	BillTo     InfoBox
	Project    InfoBox
	Items      []LineItem
	Total      float64
	Completed  float64
	BalanceDue *float64
	Notes      string
	FileName   string
}

// Label returns the large right-aligned banner text.
func (k Kind) Label() string {
	if k == KindProposal {
		return "PROPOSAL"
	}
	return "INVOICE"
}
