// Package pdf renders appointment confirmation documents in memory.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ConfirmationFields are the template fields of a confirmation document.
type ConfirmationFields struct {
	RecipientName   string
	CoachName       string
	AppointmentDate string
	TimeSlot        string
	Notes           string
}

// RenderConfirmation produces the confirmation PDF as raw bytes. It is a pure
// transformation with no I/O beyond the in-memory buffer.
func RenderConfirmation(fields ConfirmationFields) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, "Appointment Confirmation", "", 1, "C", false, 0, "")
	doc.Ln(6)

	notes := fields.Notes
	if notes == "" {
		notes = "N/A"
	}

	doc.SetFont("Helvetica", "", 14)
	lines := []string{
		fmt.Sprintf("Dear %s,", fields.RecipientName),
		fmt.Sprintf("Your appointment with %s has been confirmed.", fields.CoachName),
		fmt.Sprintf("Date: %s", fields.AppointmentDate),
		fmt.Sprintf("Time: %s", fields.TimeSlot),
		fmt.Sprintf("Notes: %s", notes),
	}
	for _, line := range lines {
		doc.MultiCell(0, 8, line, "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering confirmation pdf: %w", err)
	}
	return buf.Bytes(), nil
}
