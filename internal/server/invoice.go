package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	invoicedomain "github.com/railzwaylabs/phonebill/internal/invoice/domain"
	"github.com/railzwaylabs/phonebill/internal/invoice/render"
)

type InvoiceRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	DateFrom    string `json:"date_from" binding:"required"`
	DateTo      string `json:"date_to" binding:"required"`
}

func (r InvoiceRequest) toDomain() (invoicedomain.Request, error) {
	from, err := callrecorddomain.ParseTimestamp(strings.TrimSpace(r.DateFrom))
	if err != nil {
		return invoicedomain.Request{}, fmt.Errorf("%w: date_from %q", invoicedomain.ErrInvalidRequest, r.DateFrom)
	}
	to, err := callrecorddomain.ParseTimestamp(strings.TrimSpace(r.DateTo))
	if err != nil {
		return invoicedomain.Request{}, fmt.Errorf("%w: date_to %q", invoicedomain.ErrInvalidRequest, r.DateTo)
	}
	return invoicedomain.Request{
		PhoneNumber: strings.TrimSpace(r.PhoneNumber),
		From:        from,
		To:          to,
	}, nil
}

func (s *Server) buildInvoice(c *gin.Context) (*invoicedomain.Invoice, bool) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err))
		return nil, false
	}

	domainReq, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}

	inv, err := s.invoiceSvc.Build(c.Request.Context(), domainReq)
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return inv, true
}

// GetInvoice handles POST /get-invoice/ and answers with the bare invoice
// document.
func (s *Server) GetInvoice(c *gin.Context) {
	inv, ok := s.buildInvoice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, render.NewView(inv))
}

// CreateInvoice handles POST /api/invoices.
func (s *Server) CreateInvoice(c *gin.Context) {
	inv, ok := s.buildInvoice(c)
	if !ok {
		return
	}
	respondData(c, render.NewView(inv))
}

// CreateInvoicePDF handles POST /api/invoices/pdf.
func (s *Server) CreateInvoicePDF(c *gin.Context) {
	inv, ok := s.buildInvoice(c)
	if !ok {
		return
	}

	doc, err := s.renderer.PDF(inv)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%s-%s.pdf",
		strings.TrimPrefix(inv.Subscriber.PhoneNumber, "+"), inv.To.Format("2006-01"))
	respondAttachment(c, "application/pdf", filename, doc)
}
