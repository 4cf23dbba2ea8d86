// Package pdf renders leases and inspection reports with fpdf.
package pdf

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoding for photo checks.
	_ "image/jpeg" // Register JPEG decoding for photo checks.
	_ "image/png"  // Register PNG decoding for photo checks.
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// Compile-time check: Renderer implements domain.DocumentRenderer.
var _ domain.DocumentRenderer = (*Renderer)(nil)

// PhotoResolver maps a stored photo path to a readable file.
type PhotoResolver interface {
	Resolve(rel string) (string, error)
}

// Renderer writes PDF files into a temporary directory. Callers remove them
// once served.
type Renderer struct {
	dir    string
	photos PhotoResolver
}

// New creates a renderer writing into dir. photos may be nil, in which case
// inspection reports list photos without embedding them.
func New(dir string, photos PhotoResolver) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	return &Renderer{dir: dir, photos: photos}, nil
}

// Dir returns the directory PDFs are written to.
func (r *Renderer) Dir() string {
	return r.dir
}

// RenderContract prints the lease.
func (r *Renderer) RenderContract(ctx context.Context, doc domain.ContractDocument) (string, error) {
	return r.render(ctx, "contrat", func(p *page) {
		p.title("Contrat de location " + doc.Contract.Reference)
		p.parties(doc)
		p.section("Conditions")
		p.field("Loyer mensuel", formatCents(doc.Logement.RentCents))
		p.field("Charges", formatCents(doc.Logement.ChargesCents))
		p.field("Date de debut", doc.Contract.StartDate.Format("02/01/2006"))
		if doc.Contract.ExpectedEndDate != nil {
			p.field("Fin prevue", doc.Contract.ExpectedEndDate.Format("02/01/2006"))
		}
		p.field("Statut", string(doc.Contract.Status))
	})
}

// RenderInspection prints an état des lieux with its photos.
func (r *Renderer) RenderInspection(ctx context.Context, doc domain.InspectionDocument) (string, error) {
	return r.render(ctx, "etat-des-lieux", func(p *page) {
		p.title(fmt.Sprintf("Etat des lieux de %s", doc.Inspection.Type))
		p.parties(domain.ContractDocument{Contract: doc.Contract, Logement: doc.Logement, Candidature: doc.Candidature})
		p.section("Constat")
		p.field("Date", doc.Inspection.Date.Format("02/01/2006"))
		p.paragraph(doc.Inspection.Observations)

		if len(doc.Photos) == 0 {
			return
		}
		p.section("Photos")
		for _, photo := range doc.Photos {
			p.field(string(photo.Category), photo.Path)
			if r.photos != nil {
				if path, err := r.photos.Resolve(photo.Path); err == nil {
					p.image(path, photo.MimeType)
				}
			}
		}
	})
}

type result struct {
	path string
	err  error
}

// render builds the document off the caller's goroutine so that ctx can cut
// the wait short. A file finished after cancellation is removed.
func (r *Renderer) render(ctx context.Context, prefix string, build func(*page)) (string, error) {
	done := make(chan result, 1)

	go func() {
		path, err := r.write(prefix, build)
		done <- result{path: path, err: err}
	}()

	select {
	case res := <-done:
		return res.path, res.err
	case <-ctx.Done():
		go func() {
			if res := <-done; res.path != "" {
				os.Remove(res.path)
			}
		}()
		return "", ctx.Err()
	}
}

func (r *Renderer) write(prefix string, build func(*page)) (string, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	build(&page{pdf: doc, tr: doc.UnicodeTranslatorFromDescriptor("")})
	if err := doc.Error(); err != nil {
		return "", fmt.Errorf("building pdf: %w", err)
	}

	f, err := os.CreateTemp(r.dir, prefix+"-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating pdf file: %w", err)
	}
	if err := doc.Output(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing pdf: %w", err)
	}
	return f.Name(), nil
}

// page wraps fpdf with the few layout primitives the documents use.
type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p *page) title(s string) {
	p.pdf.SetFont("Helvetica", "B", 16)
	p.pdf.CellFormat(0, 10, p.tr(s), "", 1, "C", false, 0, "")
	p.pdf.Ln(4)
}

func (p *page) section(s string) {
	p.pdf.Ln(3)
	p.pdf.SetFont("Helvetica", "B", 12)
	p.pdf.CellFormat(0, 8, p.tr(s), "B", 1, "L", false, 0, "")
	p.pdf.Ln(2)
}

func (p *page) field(label, value string) {
	p.pdf.SetFont("Helvetica", "B", 10)
	p.pdf.CellFormat(50, 6, p.tr(label), "", 0, "L", false, 0, "")
	p.pdf.SetFont("Helvetica", "", 10)
	p.pdf.MultiCell(0, 6, p.tr(value), "", "L", false)
}

func (p *page) paragraph(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	p.pdf.SetFont("Helvetica", "", 10)
	p.pdf.MultiCell(0, 5, p.tr(s), "", "L", false)
}

func (p *page) parties(doc domain.ContractDocument) {
	p.section("Logement")
	p.field("Reference", doc.Logement.Reference)
	p.field("Adresse", doc.Logement.Address)
	p.section("Locataire")
	p.field("Nom", doc.Candidature.Name)
	p.field("Email", doc.Candidature.Email)
	p.field("Contrat", doc.Contract.Reference)
}

// image embeds a photo when it decodes cleanly; fpdf's error state would
// otherwise poison the whole document.
func (p *page) image(path, mimeType string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	_, _, err = image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return
	}

	kind := strings.ToUpper(strings.TrimPrefix(mimeType, "image/"))
	if kind == "JPEG" {
		kind = "JPG"
	}
	p.pdf.ImageOptions(path, p.pdf.GetX(), p.pdf.GetY(), 60, 0, true,
		fpdf.ImageOptions{ImageType: kind, ReadDpi: true}, 0, "")
	p.pdf.Ln(2)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d,%02d EUR", cents/100, cents%100)
}
