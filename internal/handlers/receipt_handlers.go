package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"genzip/internal/common"
	"genzip/internal/models"
	"genzip/internal/services"

	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
)

// ReceiptHandlers renders PDF receipts for ledger rows
type ReceiptHandlers struct {
	creditService  services.CreditService
	accountService services.AccountService
}

// NewReceiptHandlers creates a new receipt handlers instance
func NewReceiptHandlers(creditService services.CreditService, accountService services.AccountService) *ReceiptHandlers {
	return &ReceiptHandlers{
		creditService:  creditService,
		accountService: accountService,
	}
}

// DownloadReceipt handles GET /admin/payments/:id/receipt
func (h *ReceiptHandlers) DownloadReceipt(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Payment")
	}
	ctx := c.Request().Context()

	tx, err := h.creditService.GetTransaction(ctx, actor.CompanyID, id)
	if err != nil {
		return respondError(c, err, "Payment")
	}
	company, err := h.accountService.GetCompany(ctx, actor)
	if err != nil {
		return respondError(c, err, "Company")
	}

	pdfBytes, err := generateReceiptPDF(company, tx)
	if err != nil {
		return common.SendServerError(c, fmt.Sprintf("Failed to generate PDF: %v", err))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=receipt-%s.pdf", tx.ID))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

func generateReceiptPDF(company *models.Company, tx *models.CreditTransaction) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "GENZIP PAYMENT RECEIPT")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Receipt Number: %s", tx.ID.String()))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", tx.CreatedAt.Format("02-Jan-2006")))
	pdf.Ln(8)
	if tx.PaymentMode != nil && *tx.PaymentMode != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Payment Mode: %s", *tx.PaymentMode))
		pdf.Ln(8)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "BILLED TO:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, company.Name)
	pdf.Ln(6)
	pdf.Cell(0, 6, company.AdminName+" <"+company.Email+">")
	pdf.Ln(6)
	if address := common.SafeString(company.Address); address != "" {
		pdf.MultiCell(0, 6, address, "", "L", false)
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	headers := []string{"Description", "Credits", "Amount"}
	colWidths := []float64{100, 30, 40}
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	credits := tx.CreditsAdded
	if credits == 0 {
		credits = -tx.CreditsUsed
	}
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(colWidths[0], 8, tx.Reason, "1", 0, "L", false, 0, "")
	pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", credits), "1", 0, "C", false, 0, "")
	pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", tx.AmountPaid), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(130, 8, "TOTAL PAID (INR):", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", tx.AmountPaid), "", 0, "R", false, 0, "")
	pdf.Ln(14)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, "This is a computer generated receipt.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
