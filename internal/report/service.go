// Package report renders a consultation transcript as a PDF for download or
// forwarding to a dermatologist.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/signintech/gopdf"

	"medibot-ai/internal/consultation"
)

// defaultFontPaths are the common DejaVuSans locations probed at render time.
var defaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

type Service struct {
	fontPaths []string
}

// NewService builds a report service. With no arguments the standard DejaVu
// font locations are probed.
func NewService(fontPaths ...string) *Service {
	if len(fontPaths) == 0 {
		fontPaths = defaultFontPaths
	}
	return &Service{fontPaths: fontPaths}
}

// TranscriptPDF renders the patient profile and the full message log of c.
func (s *Service) TranscriptPDF(c *consultation.Consultation) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF, ensure ttf-dejavu is installed: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "MediBot AI Consultation Report")
	pdf.Br(30)

	// Patient profile
	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Date: %s", time.Now().Format("02.01.2006 15:04")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Consultation: #%d (%s)", c.ID, c.Title))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Name: %s    Age: %s", orDash(c.PatientName), orDash(c.PatientAge)))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Skin Type: %s    Problem Type: %s", orDash(c.SkinType), orDash(c.ProblemType)))
	pdf.Br(25)

	// Transcript
	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Conversation:")
	pdf.Br(15)

	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return nil, err
	}
	if len(c.Messages) == 0 {
		pdf.Cell(nil, "- No messages recorded.")
		pdf.Br(15)
	}
	for _, m := range c.Messages {
		who := "Patient"
		if m.Role == consultation.RoleAssistant {
			who = "MediBot AI"
		}
		line := fmt.Sprintf("[%s] %s: %s", m.Timestamp, who, m.Content)
		if len(m.ImageBytes) > 0 {
			line += " (image attached)"
		}
		lines, _ := pdf.SplitText(line, 500)
		for _, l := range lines {
			if pdf.GetY() > 780 {
				pdf.AddPage()
			}
			pdf.Cell(nil, l)
			pdf.Br(12)
		}
		pdf.Br(5)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
