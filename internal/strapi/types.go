// Package strapi provides a client for the Strapi content store REST API and
// the destination record schemas written to it.
package strapi

import "time"

const (
	// StatusCancelled marks an order that was cancelled.
	StatusCancelled OrderStatus = "CANCELLED"

	// StatusComplete marks a finished order.
	StatusComplete OrderStatus = "COMPLETE"

	// StatusInProduction marks an order currently in production.
	StatusInProduction OrderStatus = "IN_PRODUCTION"

	// StatusInvoicePaid marks an order whose invoice has been paid.
	StatusInvoicePaid OrderStatus = "INVOICE_PAID"

	// StatusPaymentNeeded marks an order awaiting payment.
	StatusPaymentNeeded OrderStatus = "PAYMENT_NEEDED"

	// StatusQuote marks a quote not yet sent. Unmapped source labels land here.
	StatusQuote OrderStatus = "QUOTE"

	// StatusQuoteApproved marks a quote the customer approved.
	StatusQuoteApproved OrderStatus = "QUOTE_APPROVED"

	// StatusQuoteSent marks a quote sent for approval.
	StatusQuoteSent OrderStatus = "QUOTE_SENT"

	// StatusReadyForPickup marks an order awaiting customer pickup.
	StatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"

	// StatusShipped marks an order that has shipped.
	StatusShipped OrderStatus = "SHIPPED"
)

const (
	// ActionCreated indicates an upsert created a new record.
	ActionCreated UpsertAction = "created"

	// ActionUpdated indicates an upsert updated an existing record.
	ActionUpdated UpsertAction = "updated"
)

// OrderStatus is the destination order status enum.
type OrderStatus string

// UpsertAction describes which write an upsert performed.
type UpsertAction string

// Address is a normalized destination address. All fields are required; an
// incomplete source address is omitted entirely rather than stored partially.
type Address struct {
	// City is the city name.
	City string `json:"city"`

	// Country is the country code.
	Country string `json:"country"`

	// State is the two-letter state or province code.
	State string `json:"state"`

	// Street is the street address, one or two lines joined by a newline.
	Street string `json:"street"`

	// Zip is the postal code.
	Zip string `json:"zip"`
}

// CustomerRecord is the destination shape for a customer.
type CustomerRecord struct {
	// Address is the customer's normalized address, if complete.
	Address *Address `json:"address,omitempty"`

	// Company is the customer's company name.
	Company string `json:"company,omitempty"`

	// Email is the customer's primary email address.
	Email string `json:"email"`

	// ExternalID is the source system's stable identifier.
	ExternalID string `json:"externalId"`

	// Name is the customer's display name.
	Name string `json:"name"`

	// Notes holds free-form notes carried over from the source.
	Notes string `json:"notes,omitempty"`

	// Phone is the customer's phone number.
	Phone string `json:"phone,omitempty"`

	// SourceCreatedAt is when the record was created in the source system.
	SourceCreatedAt time.Time `json:"sourceCreatedAt"`

	// SourceUpdatedAt is when the record last changed in the source system.
	SourceUpdatedAt time.Time `json:"sourceUpdatedAt"`
}

// LineItem is the destination shape for one order line.
type LineItem struct {
	// Description is the style description.
	Description string `json:"description"`

	// ExternalID is the source line item identifier.
	ExternalID string `json:"externalId"`

	// Quantity is the total quantity ordered.
	Quantity int `json:"quantity"`

	// Total is the computed line total (quantity * unit cost).
	Total float64 `json:"total"`

	// UnitCost is the per-unit price.
	UnitCost float64 `json:"unitCost"`
}

// OrderRecord is the destination shape for an order. Every monetary field is
// non-negative; amountOutstanding always equals max(total - amountPaid, 0)
// unless the source supplied it explicitly.
type OrderRecord struct {
	// AmountOutstanding is the balance still owed.
	AmountOutstanding float64 `json:"amountOutstanding"`

	// AmountPaid is the total paid so far.
	AmountPaid float64 `json:"amountPaid"`

	// BillingAddress is the normalized billing address, if complete.
	BillingAddress *Address `json:"billingAddress,omitempty"`

	// Customer is the resolved destination id of the owning customer record.
	// Zero means the relation was not resolved.
	Customer int `json:"customer,omitempty"`

	// CustomerDueDate is the date promised to the customer (YYYY-MM-DD).
	CustomerDueDate string `json:"customerDueDate,omitempty"`

	// DeliveryMethod is the normalized delivery method enum value
	// (pickup, ship, delivery or other). Empty when the source has none.
	DeliveryMethod string `json:"deliveryMethod,omitempty"`

	// Discount is the total discount applied.
	Discount float64 `json:"discount"`

	// DueDate is the internal due date (YYYY-MM-DD).
	DueDate string `json:"dueDate,omitempty"`

	// ExternalID is the source system's stable identifier.
	ExternalID string `json:"externalId"`

	// Fees is the sum of all flat fee amounts.
	Fees float64 `json:"fees"`

	// InvoiceDate is the invoice issue date (YYYY-MM-DD).
	InvoiceDate string `json:"invoiceDate,omitempty"`

	// IsQuote indicates the record is still in the quote stage.
	IsQuote bool `json:"isQuote"`

	// LineItems are the order's line items.
	LineItems []LineItem `json:"lineItems,omitempty"`

	// Nickname is the operator-assigned order nickname.
	Nickname string `json:"nickname,omitempty"`

	// Notes holds free-form notes carried over from the source.
	Notes string `json:"notes,omitempty"`

	// OrderNumber is the short human-facing order number.
	OrderNumber string `json:"orderNumber"`

	// PaymentDueDate is the date payment is due (YYYY-MM-DD).
	PaymentDueDate string `json:"paymentDueDate,omitempty"`

	// ProductionDueDate is the production deadline (YYYY-MM-DD).
	ProductionDueDate string `json:"productionDueDate,omitempty"`

	// SalesTax is the total sales tax.
	SalesTax float64 `json:"salesTax"`

	// ShippingAddress is the normalized shipping address, if complete.
	ShippingAddress *Address `json:"shippingAddress,omitempty"`

	// SourceCreatedAt is when the record was created in the source system.
	SourceCreatedAt time.Time `json:"sourceCreatedAt"`

	// SourceCustomerID is the source identifier of the owning customer,
	// used to resolve the Customer relation.
	SourceCustomerID string `json:"sourceCustomerId,omitempty"`

	// SourceUpdatedAt is when the record last changed in the source system.
	SourceUpdatedAt time.Time `json:"sourceUpdatedAt"`

	// Status is the destination status enum value.
	Status OrderStatus `json:"status"`

	// Subtotal is the pre-tax, pre-fee line item total.
	Subtotal float64 `json:"subtotal"`

	// Total is the grand total.
	Total float64 `json:"total"`
}

// IsQuoteStatus reports whether the status belongs to the quote family.
// The status label is the authoritative order-vs-quote discriminator.
func IsQuoteStatus(s OrderStatus) bool {
	switch s {
	case StatusQuote, StatusQuoteSent, StatusQuoteApproved:
		return true
	default:
		return false
	}
}

// Record is an existing destination record returned from a lookup.
type Record struct {
	// Attributes holds the record's raw attribute payload.
	Attributes map[string]any `json:"attributes"`

	// ID is the destination's own record identifier.
	ID int `json:"id"`
}

// UpsertResult describes the outcome of an upsert.
type UpsertResult struct {
	// Action is which write was performed.
	Action UpsertAction

	// ID is the destination record identifier.
	ID int
}
