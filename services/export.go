package services

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/dpefoundation/website/models"
)

// ScholarshipCSVName is the download name of a variant export.
func ScholarshipCSVName(v *Variant) string { return v.Name + "_submissions.csv" }

// ContactCSVName is the download name of the contact export.
const ContactCSVName = "contact_submissions.csv"

// WriteScholarshipCSV writes a header line plus one line per row.
func WriteScholarshipCSV(w io.Writer, v *Variant, rows []ScholarshipRow, loc *time.Location) error {
	cw := csv.NewWriter(w)
	header := []string{"Full Name"}
	for _, slot := range v.Slots {
		header = append(header, slot.Label)
	}
	header = append(header, "Submitted At", "Reviewed", "Status", "Admin Notes")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.FullName}
		for _, slot := range v.Slots {
			rec = append(rec, r.File(slot.Role))
		}
		rec = append(rec, r.SubmissionTime.In(loc).Format(DisplayTimeLayout), yesNo(r.Reviewed), r.Status, r.AdminNotes)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteContactCSV writes a header line plus one line per contact message.
func WriteContactCSV(w io.Writer, rows []models.ContactSubmission, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Full Name", "Email", "Message", "Submitted At"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.FullName, r.Email, r.Message, r.SubmissionTime.In(loc).Format(DisplayTimeLayout)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
