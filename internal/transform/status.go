package transform

import (
	"strings"

	"github.com/printshopos/orderbridge/internal/strapi"
)

// statusMap maps Printavo status labels, lowercased and trimmed, to the
// destination status enum. Printavo statuses are shop-configured free text,
// so the table carries every label observed in production.
var statusMap = map[string]strapi.OrderStatus{
	"approved":                      strapi.StatusQuoteApproved,
	"cancelled":                     strapi.StatusCancelled,
	"complete":                      strapi.StatusComplete,
	"delivered":                     strapi.StatusComplete,
	"emb - need to make sew out":    strapi.StatusInProduction,
	"in production":                 strapi.StatusInProduction,
	"invoice paid":                  strapi.StatusInvoicePaid,
	"materials pending":             strapi.StatusInProduction,
	"payment needed":                strapi.StatusPaymentNeeded,
	"payment received":              strapi.StatusInvoicePaid,
	"pending":                       strapi.StatusQuote,
	"pending approval":              strapi.StatusQuoteSent,
	"quote":                         strapi.StatusQuote,
	"quote approved":                strapi.StatusQuoteApproved,
	"quote out for approval - email": strapi.StatusQuoteSent,
	"quote sent":                    strapi.StatusQuoteSent,
	"ready for pick up":             strapi.StatusReadyForPickup,
	"ready for pickup":              strapi.StatusReadyForPickup,
	"shipped":                       strapi.StatusShipped,
	"shipped - tracking updated":    strapi.StatusShipped,
	"sp - need film files made":     strapi.StatusInProduction,
	"waiting for pickup":            strapi.StatusReadyForPickup,
}

// MapStatus maps a source status label to the destination enum. Matching is
// case-insensitive and whitespace-trimmed; unmapped labels default to
// StatusQuote rather than failing the record.
func MapStatus(label string) strapi.OrderStatus {
	key := strings.ToLower(strings.TrimSpace(label))
	if status, ok := statusMap[key]; ok {
		return status
	}
	return strapi.StatusQuote
}
