// Package receipt renders donation and refund receipts as PDF files.
// File names are a pure function of the payment intent (or refund) id,
// so the read path can check existence without a lookup table and
// regeneration overwrites rather than accumulating copies.
package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/givebridge/backend/internal/model"
)

// Org carries the branding and tax details printed on every receipt.
type Org struct {
	Name    string
	TaxLine string // e.g. "Registered charity no. 1234567"
	Address string
	Email   string
	Website string
}

// Generator renders receipts into a configured directory.
type Generator struct {
	dir string
	org Org
	now func() time.Time
}

// NewGenerator creates a Generator writing under dir, creating it if
// absent.
func NewGenerator(dir string, org Org) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("receipt: mkdir %s: %w", dir, err)
	}
	return &Generator{dir: dir, org: org, now: time.Now}, nil
}

// Path returns the receipt file path for a payment intent id. It is the
// single naming function shared by the write and read paths.
func (g *Generator) Path(paymentIntentID string) string {
	return filepath.Join(g.dir, "receipt_"+sanitizeID(paymentIntentID)+".pdf")
}

// RefundPath returns the file path for a refund receipt.
func (g *Generator) RefundPath(refundID string) string {
	return filepath.Join(g.dir, "refund_"+sanitizeID(refundID)+".pdf")
}

// Exists reports whether a receipt has been generated for the id.
func (g *Generator) Exists(paymentIntentID string) bool {
	_, err := os.Stat(g.Path(paymentIntentID))
	return err == nil
}

// Generate renders a donation receipt and returns the file path.
func (g *Generator) Generate(d *model.Donation) (string, error) {
	pdf := g.newDoc("Donation Receipt")

	g.section(pdf, "Donor")
	g.row(pdf, "Name", d.DonorName)
	if !d.Anonymous {
		g.row(pdf, "Email", d.DonorEmail)
	}

	g.section(pdf, "Donation")
	g.row(pdf, "Receipt for", "Payment "+d.PaymentIntentID)
	g.row(pdf, "Amount", formatAmount(d.Amount, d.Currency))
	g.row(pdf, "Date", d.CreatedAt.Format("2 January 2006"))
	if d.Message != "" {
		g.row(pdf, "Message", d.Message)
	}

	g.section(pdf, "Project")
	g.row(pdf, "Project", projectLabel(d))

	path := g.Path(d.PaymentIntentID)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("receipt: write %s: %w", path, err)
	}
	return path, nil
}

// GenerateRefund renders a refund receipt and returns the file path.
func (g *Generator) GenerateRefund(d *model.Donation, refund *model.Refund) (string, error) {
	pdf := g.newDoc("Refund Receipt")

	g.section(pdf, "Refund")
	g.row(pdf, "Refund id", refund.ID)
	g.row(pdf, "Amount refunded", formatAmount(refund.Amount, refund.Currency))
	if refund.Reason != "" {
		g.row(pdf, "Reason", strings.ReplaceAll(refund.Reason, "_", " "))
	}
	g.row(pdf, "Date", g.now().Format("2 January 2006"))

	g.section(pdf, "Original donation")
	g.row(pdf, "Payment", d.PaymentIntentID)
	g.row(pdf, "Donor", d.DonorName)
	g.row(pdf, "Original amount", formatAmount(d.Amount, d.Currency))
	g.row(pdf, "Donated on", d.CreatedAt.Format("2 January 2006"))
	g.row(pdf, "Project", projectLabel(d))

	path := g.RefundPath(refund.ID)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("receipt: write %s: %w", path, err)
	}
	return path, nil
}

// newDoc builds an A4 page with the branding header and tax/contact
// footer shared by all receipt kinds.
func (g *Generator) newDoc(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-22)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		footer := g.org.TaxLine
		if g.org.Address != "" {
			footer += "  |  " + g.org.Address
		}
		pdf.CellFormat(0, 4, footer, "", 1, "C", false, 0, "")
		contact := g.org.Email
		if g.org.Website != "" {
			contact += "  |  " + g.org.Website
		}
		pdf.CellFormat(0, 4, contact, "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(0, 10, g.org.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 13)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(10, pdf.GetY()+2, 200, pdf.GetY()+2)
	pdf.Ln(6)

	return pdf
}

func (g *Generator) section(pdf *gofpdf.Fpdf, name string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(0, 7, name, "", 1, "L", false, 0, "")
}

func (g *Generator) row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	pdf.SetTextColor(30, 30, 30)
	pdf.MultiCell(0, 6, value, "", "L", false)
}

func projectLabel(d *model.Donation) string {
	if d.ProjectTitle != "" {
		return d.ProjectTitle
	}
	if strings.EqualFold(d.ProjectID, "general") {
		return "General Fund"
	}
	return d.ProjectID
}

func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(minor)/100, strings.ToUpper(currency))
}

// sanitizeID keeps receipt file names flat even if an id ever contains
// path separators.
func sanitizeID(id string) string {
	id = strings.ReplaceAll(id, "/", "_")
	return strings.ReplaceAll(id, string(os.PathSeparator), "_")
}
