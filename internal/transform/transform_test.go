package transform

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/printshopos/orderbridge/internal/printavo"
	"github.com/printshopos/orderbridge/internal/strapi"
)

func TestOrder(t *testing.T) {
	t.Parallel()

	base := printavo.Order{
		AmountPaid: 0,
		Contact: &printavo.Contact{
			Email:    "r.ramsey10@yahoo.com",
			FullName: "Randy Ramsey",
		},
		ID:     "21199730",
		Status: printavo.Status{Name: "QUOTE"},
		Total:  1250,
	}

	tests := map[string]struct {
		mutate  func(*printavo.Order)
		verify  func(*testing.T, *strapi.OrderRecord)
		wantErr string
	}{
		"quote with outstanding balance derived": {
			mutate: func(_ *printavo.Order) {},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Equal(t, "21199730", record.ExternalID)
				require.Equal(t, strapi.StatusQuote, record.Status)
				require.True(t, record.IsQuote)
				require.Equal(t, float64(0), record.AmountPaid)
				require.Equal(t, float64(1250), record.AmountOutstanding)
			},
		},
		"outstanding taken from source when supplied": {
			mutate: func(o *printavo.Order) {
				outstanding := 300.0
				o.AmountOutstanding = &outstanding
				o.AmountPaid = 500
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Equal(t, float64(300), record.AmountOutstanding)
			},
		},
		"outstanding never negative": {
			mutate: func(o *printavo.Order) {
				o.AmountPaid = 2000
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Equal(t, float64(0), record.AmountOutstanding)
			},
		},
		"negative monetary values clamped": {
			mutate: func(o *printavo.Order) {
				o.Discount = -50
				o.SalesTax = -3
				o.Subtotal = -100
				o.Total = -1250
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Equal(t, float64(0), record.Discount)
				require.Equal(t, float64(0), record.SalesTax)
				require.Equal(t, float64(0), record.Subtotal)
				require.Equal(t, float64(0), record.Total)
			},
		},
		"fees summed across entries": {
			mutate: func(o *printavo.Order) {
				o.Fees = []printavo.Fee{
					{Amount: 10, Description: "Rush"},
					{Amount: 5.5, Description: "Art"},
					{Amount: -2, Description: "Bogus"},
				}
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Equal(t, 15.5, record.Fees)
			},
		},
		"in production is not a quote": {
			mutate: func(o *printavo.Order) {
				o.Status = printavo.Status{Name: "In Production"}
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Equal(t, strapi.StatusInProduction, record.Status)
				require.False(t, record.IsQuote)
			},
		},
		"due dates rendered as plain dates": {
			mutate: func(o *printavo.Order) {
				due := time.Date(2025, 7, 4, 15, 0, 0, 0, time.UTC)
				o.CustomerDueDate = &due
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Equal(t, "2025-07-04", record.CustomerDueDate)
				require.Empty(t, record.DueDate)
			},
		},
		"incomplete billing address dropped": {
			mutate: func(o *printavo.Order) {
				o.BillingAddress = &printavo.Address{Address1: "123 Main St", City: "Austin"}
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Nil(t, record.BillingAddress)
			},
		},
		"complete shipping address normalized": {
			mutate: func(o *printavo.Order) {
				o.ShippingAddress = &printavo.Address{
					Address1: "123 Main St",
					Address2: "Suite 4",
					City:     "Austin",
					State:    "Texas",
					Zip:      "78701",
				}
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.NotNil(t, record.ShippingAddress)
				require.Equal(t, "123 Main St\nSuite 4", record.ShippingAddress.Street)
				require.Equal(t, "TX", record.ShippingAddress.State)
				require.Equal(t, "US", record.ShippingAddress.Country)
			},
		},
		"delivery method normalized": {
			mutate: func(o *printavo.Order) {
				o.DeliveryMethod = "Shipping"
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Equal(t, "ship", record.DeliveryMethod)
			},
		},
		"unknown delivery method mapped to other": {
			mutate: func(o *printavo.Order) {
				o.DeliveryMethod = "Courier"
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Equal(t, "other", record.DeliveryMethod)
			},
		},
		"long nickname truncated": {
			mutate: func(o *printavo.Order) {
				o.Nickname = strings.Repeat("x", maxNicknameLen+40)
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Len(t, record.Nickname, maxNicknameLen)
			},
		},
		"long notes truncated": {
			mutate: func(o *printavo.Order) {
				o.Notes = strings.Repeat("n", maxOrderNotesLen+1)
			},
			verify: func(t *testing.T, record *strapi.OrderRecord) {
				require.Len(t, record.Notes, maxOrderNotesLen)
			},
		},
		"missing external id": {
			mutate: func(o *printavo.Order) {
				o.ID = ""
			},
			wantErr: "missing external id",
		},
		"missing contact": {
			mutate: func(o *printavo.Order) {
				o.Contact = nil
			},
			wantErr: "missing contact name",
		},
		"blank contact name": {
			mutate: func(o *printavo.Order) {
				o.Contact = &printavo.Contact{Email: "a@example.com", FullName: "   "}
			},
			wantErr: "missing contact name",
		},
		"invalid contact email": {
			mutate: func(o *printavo.Order) {
				o.Contact = &printavo.Contact{Email: "not-an-email", FullName: "Randy Ramsey"}
			},
			wantErr: "invalid contact email",
		},
		"empty contact email": {
			mutate: func(o *printavo.Order) {
				o.Contact = &printavo.Contact{Email: "", FullName: "Randy Ramsey"}
			},
			wantErr: "invalid contact email",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			order := base
			tc.mutate(&order)

			record, err := Order(order)

			if tc.wantErr != "" {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Contains(t, validationErr.Reason, tc.wantErr)
				require.Nil(t, record)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, record)
			tc.verify(t, record)
		})
	}
}

func TestOrder_LineItemsNeverFailParent(t *testing.T) {
	t.Parallel()

	order := printavo.Order{
		Contact: &printavo.Contact{Email: "r.ramsey10@yahoo.com", FullName: "Randy Ramsey"},
		ID:      "21199730",
		LineItems: []printavo.LineItem{
			{Description: "Tee", ID: "li-1", Quantity: 24, StyleNumber: "G500", UnitCost: 8.5},
			{ID: "li-2"},
			{Description: "Hoodie", ID: "li-3", Quantity: -4, UnitCost: -20},
		},
	}

	record, err := Order(order)

	require.NoError(t, err)
	require.Len(t, record.LineItems, 3)
	require.Equal(t, strapi.LineItem{
		Description: "G500 - Tee",
		ExternalID:  "li-1",
		Quantity:    24,
		Total:       204,
		UnitCost:    8.5,
	}, record.LineItems[0])
	require.Equal(t, float64(0), record.LineItems[1].Total)
	require.Equal(t, float64(0), record.LineItems[2].Total)
	require.Equal(t, 0, record.LineItems[2].Quantity)
}

func TestCustomer(t *testing.T) {
	t.Parallel()

	base := printavo.Customer{
		Email:     "Jane.Doe@Example.com",
		FirstName: "Jane",
		ID:        "cust-77",
		LastName:  "Doe",
		Phone:     "512.555.0134",
	}

	tests := map[string]struct {
		mutate  func(*printavo.Customer)
		verify  func(*testing.T, *strapi.CustomerRecord)
		wantErr string
	}{
		"personal name and lowered email": {
			mutate: func(_ *printavo.Customer) {},
			verify: func(t *testing.T, record *strapi.CustomerRecord) {
				require.Equal(t, "Jane Doe", record.Name)
				require.Equal(t, "jane.doe@example.com", record.Email)
				require.Equal(t, "(512) 555-0134", record.Phone)
			},
		},
		"company name fallback": {
			mutate: func(c *printavo.Customer) {
				c.Company = "Acme Screen Printing"
				c.FirstName = ""
				c.LastName = ""
			},
			verify: func(t *testing.T, record *strapi.CustomerRecord) {
				require.Equal(t, "Acme Screen Printing", record.Name)
			},
		},
		"billing address preferred": {
			mutate: func(c *printavo.Customer) {
				c.BillingAddress = &printavo.Address{
					Address1: "1 Billing Way", City: "Austin", State: "TX", Zip: "78701",
				}
				c.ShippingAddress = &printavo.Address{
					Address1: "2 Shipping Rd", City: "Dallas", State: "TX", Zip: "75201",
				}
			},
			verify: func(t *testing.T, record *strapi.CustomerRecord) {
				require.NotNil(t, record.Address)
				require.Equal(t, "1 Billing Way", record.Address.Street)
			},
		},
		"non-ten-digit phone kept as-is": {
			mutate: func(c *printavo.Customer) {
				c.Phone = "+44 20 7946 0958"
			},
			verify: func(t *testing.T, record *strapi.CustomerRecord) {
				require.Equal(t, "+44 20 7946 0958", record.Phone)
			},
		},
		"long notes truncated": {
			mutate: func(c *printavo.Customer) {
				c.Notes = strings.Repeat("n", maxCustomerNotesLen+250)
			},
			verify: func(t *testing.T, record *strapi.CustomerRecord) {
				require.Len(t, record.Notes, maxCustomerNotesLen)
			},
		},
		"missing external id": {
			mutate: func(c *printavo.Customer) {
				c.ID = ""
			},
			wantErr: "missing external id",
		},
		"no usable name": {
			mutate: func(c *printavo.Customer) {
				c.Company = ""
				c.FirstName = ""
				c.LastName = ""
			},
			wantErr: "missing customer name",
		},
		"invalid email": {
			mutate: func(c *printavo.Customer) {
				c.Email = "jane.doe"
			},
			wantErr: "invalid customer email",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			customer := base
			tc.mutate(&customer)

			record, err := Customer(customer)

			if tc.wantErr != "" {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Contains(t, validationErr.Reason, tc.wantErr)
				require.Nil(t, record)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, record)
			tc.verify(t, record)
		})
	}
}

func TestMapStatus(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		label string
		want  strapi.OrderStatus
	}{
		"exact label":            {label: "QUOTE", want: strapi.StatusQuote},
		"mixed case":             {label: "In Production", want: strapi.StatusInProduction},
		"surrounding whitespace": {label: "  invoice paid  ", want: strapi.StatusInvoicePaid},
		"shop-specific label":    {label: "EMB - Need to Make Sew Out", want: strapi.StatusInProduction},
		"unmapped label":         {label: "Some Custom Column", want: strapi.StatusQuote},
		"empty label":            {label: "", want: strapi.StatusQuote},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, MapStatus(tc.label))
		})
	}
}

func TestMapDeliveryMethod(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		method string
		want   string
	}{
		"pickup":                 {method: "Pickup", want: "pickup"},
		"ship":                   {method: "ship", want: "ship"},
		"shipping alias":         {method: "Shipping", want: "ship"},
		"delivery":               {method: "DELIVERY", want: "delivery"},
		"surrounding whitespace": {method: "  pickup  ", want: "pickup"},
		"unmapped method":        {method: "Courier", want: "other"},
		"empty":                  {method: "", want: ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, MapDeliveryMethod(tc.method))
		})
	}
}

func TestNormalizeState(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		state string
		want  string
	}{
		"two-letter code":      {state: "tx", want: "TX"},
		"full name":            {state: "New York", want: "NY"},
		"full name lowercase":  {state: "california", want: "CA"},
		"unknown name is lossy": {state: "British Columbia", want: "BR"},
		"empty":                {state: "", want: ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, normalizeState(tc.state))
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	err := error(&ValidationError{ExternalID: "21199730", Reason: "missing contact name"})

	require.Equal(t, "record 21199730: missing contact name", err.Error())

	var target *ValidationError
	require.True(t, errors.As(err, &target))
}
