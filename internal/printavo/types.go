// Package printavo provides a client for the Printavo order-management GraphQL API.
package printavo

import "time"

// Address represents a billing or shipping address on an order or customer.
type Address struct {
	// Address1 is the first line of the street address.
	Address1 string `json:"address1"`

	// Address2 is the second line of the street address.
	Address2 string `json:"address2"`

	// City is the city name.
	City string `json:"city"`

	// Country is the country name or ISO code.
	Country string `json:"country"`

	// Name labels the address (e.g. "Billing", "Shipping").
	Name string `json:"name"`

	// State is the state or province, as a two-letter code or full name.
	State string `json:"state"`

	// Zip is the postal or ZIP code.
	Zip string `json:"zip"`
}

// Contact represents the primary contact on an order.
type Contact struct {
	// Email is the contact's email address.
	Email string `json:"email"`

	// FullName is the contact's full name.
	FullName string `json:"fullName"`

	// Phone is the contact's phone number.
	Phone string `json:"phone"`
}

// Customer represents a customer account in Printavo.
type Customer struct {
	// BillingAddress is the customer's billing address.
	BillingAddress *Address `json:"billingAddress"`

	// Company is the customer's company name.
	Company string `json:"company"`

	// CreatedAt is the customer creation timestamp.
	CreatedAt time.Time `json:"createdAt"`

	// Email is the customer's primary email address.
	Email string `json:"email"`

	// FirstName is the customer's first name.
	FirstName string `json:"firstName"`

	// ID is the Printavo customer identifier.
	ID string `json:"id"`

	// LastName is the customer's last name.
	LastName string `json:"lastName"`

	// Notes holds free-form notes attached to the customer.
	Notes string `json:"notes"`

	// Phone is the customer's phone number.
	Phone string `json:"phone"`

	// ShippingAddress is the customer's shipping address.
	ShippingAddress *Address `json:"shippingAddress"`

	// UpdatedAt is the last update timestamp.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fee represents a flat fee attached to an order.
type Fee struct {
	// Amount is the fee amount.
	Amount float64 `json:"amount"`

	// Description explains what the fee covers.
	Description string `json:"description"`

	// ID is the Printavo fee identifier.
	ID string `json:"id"`
}

// LineItem represents a single line item on an order.
type LineItem struct {
	// Category is the product category.
	Category string `json:"category"`

	// Color is the garment or product color.
	Color string `json:"color"`

	// Description is the style description.
	Description string `json:"description"`

	// ID is the Printavo line item identifier.
	ID string `json:"id"`

	// Quantity is the total quantity across all sizes.
	Quantity int `json:"quantity"`

	// StyleNumber is the product style number.
	StyleNumber string `json:"styleNumber"`

	// Taxable indicates whether the line is subject to sales tax.
	Taxable bool `json:"taxable"`

	// UnitCost is the per-unit price.
	UnitCost float64 `json:"unitCost"`
}

// Order represents an order (or quote) in Printavo.
type Order struct {
	// AmountOutstanding is the balance still owed, when Printavo supplies it.
	// Nil means the value was not present and must be derived.
	AmountOutstanding *float64 `json:"amountOutstanding"`

	// AmountPaid is the total paid so far.
	AmountPaid float64 `json:"amountPaid"`

	// BillingAddress is the order's billing address.
	BillingAddress *Address `json:"billingAddress"`

	// Contact is the primary contact for the order.
	Contact *Contact `json:"contact"`

	// CreatedAt is the order creation timestamp.
	CreatedAt time.Time `json:"createdAt"`

	// CustomerDueDate is the date promised to the customer.
	CustomerDueDate *time.Time `json:"customerDueDate"`

	// CustomerID is the Printavo identifier of the owning customer.
	CustomerID string `json:"customerId"`

	// DeliveryMethod is how the finished order reaches the customer
	// (e.g. "Pickup", "Shipping").
	DeliveryMethod string `json:"deliveryMethod"`

	// Discount is the total discount applied.
	Discount float64 `json:"discount"`

	// DueDate is the internal due date.
	DueDate *time.Time `json:"dueDate"`

	// Fees are flat fees attached to the order.
	Fees []Fee `json:"fees"`

	// ID is the Printavo order identifier.
	ID string `json:"id"`

	// InvoiceDate is the date the invoice was issued.
	InvoiceDate *time.Time `json:"invoiceDate"`

	// LineItems are the order's line items.
	LineItems []LineItem `json:"lineItems"`

	// Nickname is the operator-assigned order nickname.
	Nickname string `json:"nickname"`

	// Notes holds free-form notes attached to the order.
	Notes string `json:"notes"`

	// PaymentDueDate is the date payment is due.
	PaymentDueDate *time.Time `json:"paymentDueDate"`

	// ProductionDueDate is the date production must finish.
	ProductionDueDate *time.Time `json:"productionDueDate"`

	// SalesTax is the total sales tax.
	SalesTax float64 `json:"salesTax"`

	// ShippingAddress is the order's shipping address.
	ShippingAddress *Address `json:"shippingAddress"`

	// Status is the order's current status.
	Status Status `json:"status"`

	// Subtotal is the pre-tax, pre-fee total of all line items.
	Subtotal float64 `json:"subtotal"`

	// Total is the grand total for the order.
	Total float64 `json:"total"`

	// UpdatedAt is the last update timestamp.
	UpdatedAt time.Time `json:"updatedAt"`

	// VisualID is the short human-facing order number.
	VisualID string `json:"visualId"`
}

// Status is an order status reference.
type Status struct {
	// ID is the Printavo status identifier.
	ID string `json:"id"`

	// Name is the status label (e.g. "QUOTE", "IN PRODUCTION").
	Name string `json:"name"`
}

// Page is a single page of results from a paginated connection.
type Page[T any] struct {
	// EndCursor is the cursor to pass to fetch the next page.
	EndCursor string

	// HasMore indicates whether another page exists.
	HasMore bool

	// Nodes are the records on this page.
	Nodes []T
}

// pageInfo mirrors the GraphQL connection pageInfo object.
type pageInfo struct {
	// EndCursor is the cursor of the last node on the page.
	EndCursor string `json:"endCursor"`

	// HasNextPage indicates whether another page exists.
	HasNextPage bool `json:"hasNextPage"`
}

// connection mirrors a GraphQL connection of nodes.
type connection[T any] struct {
	// Nodes are the records on this page.
	Nodes []T `json:"nodes"`

	// PageInfo carries pagination state.
	PageInfo pageInfo `json:"pageInfo"`
}

// graphqlError is a single error entry in a GraphQL response.
type graphqlError struct {
	// Message is the human-readable error message.
	Message string `json:"message"`
}

// ordersResponse is the data payload of an orders query.
type ordersResponse struct {
	// Orders is the orders connection.
	Orders connection[Order] `json:"orders"`
}

// orderResponse is the data payload of a single order query.
type orderResponse struct {
	// Order is the requested order, nil when no order matches the id.
	Order *Order `json:"order"`
}

// customersResponse is the data payload of a customers query.
type customersResponse struct {
	// Customers is the customers connection.
	Customers connection[Customer] `json:"customers"`
}
