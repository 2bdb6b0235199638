// Package transform converts Printavo source records into Strapi destination
// records. All functions are pure: no I/O, no retained state, and every
// failure is a returned ValidationError carrying the source external id.
package transform

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/printshopos/orderbridge/internal/printavo"
	"github.com/printshopos/orderbridge/internal/strapi"
)

// Destination column widths. Free-text source fields are truncated to fit
// rather than failing the record.
const (
	maxNicknameLen      = 255
	maxOrderNotesLen    = 10000
	maxCustomerNotesLen = 5000
)

// ValidationError describes a source record that cannot be transformed.
type ValidationError struct {
	// ExternalID is the source identifier of the rejected record.
	ExternalID string

	// Reason is a human-readable description of the failure.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %s: %s", e.ExternalID, e.Reason)
}

// Order converts a Printavo order into a Strapi order record. It returns a
// ValidationError when the order has no external id or its primary contact is
// missing a name or a syntactically valid email.
func Order(src printavo.Order) (*strapi.OrderRecord, error) {
	if src.ID == "" {
		return nil, &ValidationError{ExternalID: src.ID, Reason: "missing external id"}
	}
	if src.Contact == nil || strings.TrimSpace(src.Contact.FullName) == "" {
		return nil, &ValidationError{ExternalID: src.ID, Reason: "missing contact name"}
	}
	if !validEmail(src.Contact.Email) {
		return nil, &ValidationError{ExternalID: src.ID, Reason: fmt.Sprintf("invalid contact email %q", src.Contact.Email)}
	}

	status := MapStatus(src.Status.Name)
	totals := calculateTotals(src)

	record := &strapi.OrderRecord{
		AmountOutstanding: totals.amountOutstanding,
		AmountPaid:        totals.amountPaid,
		BillingAddress:    normalizeAddress(src.BillingAddress),
		CustomerDueDate:   formatDate(src.CustomerDueDate),
		DeliveryMethod:    MapDeliveryMethod(src.DeliveryMethod),
		Discount:          totals.discount,
		DueDate:           formatDate(src.DueDate),
		ExternalID:        src.ID,
		Fees:              totals.fees,
		InvoiceDate:       formatDate(src.InvoiceDate),
		IsQuote:           strapi.IsQuoteStatus(status),
		LineItems:         transformLineItems(src.LineItems),
		Nickname:          truncate(src.Nickname, maxNicknameLen),
		Notes:             truncate(src.Notes, maxOrderNotesLen),
		OrderNumber:       src.VisualID,
		PaymentDueDate:    formatDate(src.PaymentDueDate),
		ProductionDueDate: formatDate(src.ProductionDueDate),
		SalesTax:          totals.salesTax,
		ShippingAddress:   normalizeAddress(src.ShippingAddress),
		SourceCreatedAt:   src.CreatedAt,
		SourceCustomerID:  src.CustomerID,
		SourceUpdatedAt:   src.UpdatedAt,
		Status:            status,
		Subtotal:          totals.subtotal,
		Total:             totals.total,
	}

	return record, nil
}

// Customer converts a Printavo customer into a Strapi customer record. It
// returns a ValidationError when the customer has no external id, no usable
// display name, or an invalid email.
func Customer(src printavo.Customer) (*strapi.CustomerRecord, error) {
	if src.ID == "" {
		return nil, &ValidationError{ExternalID: src.ID, Reason: "missing external id"}
	}

	name := displayName(src)
	if name == "" {
		return nil, &ValidationError{ExternalID: src.ID, Reason: "missing customer name"}
	}
	if !validEmail(src.Email) {
		return nil, &ValidationError{ExternalID: src.ID, Reason: fmt.Sprintf("invalid customer email %q", src.Email)}
	}

	record := &strapi.CustomerRecord{
		Address:         normalizeAddress(pickAddress(src.BillingAddress, src.ShippingAddress)),
		Company:         strings.TrimSpace(src.Company),
		Email:           strings.ToLower(strings.TrimSpace(src.Email)),
		ExternalID:      src.ID,
		Name:            name,
		Notes:           truncate(src.Notes, maxCustomerNotesLen),
		Phone:           cleanPhone(src.Phone),
		SourceCreatedAt: src.CreatedAt,
		SourceUpdatedAt: src.UpdatedAt,
	}

	return record, nil
}

// displayName builds the customer display name from first/last name, falling
// back to the company name.
func displayName(src printavo.Customer) string {
	name := strings.TrimSpace(strings.TrimSpace(src.FirstName) + " " + strings.TrimSpace(src.LastName))
	if name != "" {
		return name
	}
	return strings.TrimSpace(src.Company)
}

// pickAddress returns the first non-nil address.
func pickAddress(addrs ...*printavo.Address) *printavo.Address {
	for _, a := range addrs {
		if a != nil {
			return a
		}
	}
	return nil
}

// transformLineItems converts line items independently. A malformed line never
// fails the parent order; missing quantity or unit cost yields a zero total.
func transformLineItems(items []printavo.LineItem) []strapi.LineItem {
	if len(items) == 0 {
		return nil
	}

	out := make([]strapi.LineItem, 0, len(items))
	for _, item := range items {
		quantity := item.Quantity
		if quantity < 0 {
			quantity = 0
		}
		unitCost := clamp(item.UnitCost)

		out = append(out, strapi.LineItem{
			Description: lineDescription(item),
			ExternalID:  item.ID,
			Quantity:    quantity,
			Total:       float64(quantity) * unitCost,
			UnitCost:    unitCost,
		})
	}
	return out
}

// lineDescription joins the style number and description into one label.
func lineDescription(item printavo.LineItem) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(item.StyleNumber); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(item.Description); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " - ")
}

// validEmail reports whether the address parses as a bare RFC 5322 address.
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// Reject display-name forms like "Bob <bob@example.com>".
	return addr.Address == email
}

// cleanPhone strips non-digits and formats ten-digit numbers as
// (XXX) XXX-XXXX. Other lengths are returned as received.
func cleanPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	if digits.Len() != 10 {
		return phone
	}

	d := digits.String()
	return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
}

// truncate trims surrounding whitespace and caps the string at max runes.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// formatDate renders an optional timestamp as a YYYY-MM-DD date string.
func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
