package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicdesk/clinicdesk/internal/domain/invoice"
)

// InvoiceHandler exposes the read-only billing surface. Invoices are derived
// from records; there is no create or update here.
type InvoiceHandler struct {
	invoices invoice.Repository
}

func NewInvoiceHandler(invoices invoice.Repository) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

func (h *InvoiceHandler) List(c *gin.Context) {
	page := parseQueryInt(c, "page", 1)
	pageSize := parseQueryInt(c, "page_size", 20)

	invoices, total, err := h.invoices.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	type invoiceView struct {
		*invoice.Invoice
		Total int64 `json:"total"`
	}
	views := make([]invoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, invoiceView{Invoice: inv, Total: inv.Total()})
	}

	respondOK(c, gin.H{
		"invoices":    views,
		"total_count": total,
		"page":        page,
		"page_size":   pageSize,
	})
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	inv, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"invoice": inv,
		"total":   inv.Total(),
	})
}
