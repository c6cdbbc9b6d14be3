package server

import (
	"context"
	"strings"
	"time"

	"taccd/internal/api"
	"taccd/internal/models"
	"taccd/internal/sanitize"
	"taccd/internal/store"
)

// ComplaintService turns an intercepted form submission into a stored
// complaint. Every free-text field is tag-stripped before persistence.
type ComplaintService struct {
	records store.RecordStore
	now     func() time.Time
}

// NewComplaintService creates the service.
func NewComplaintService(records store.RecordStore) *ComplaintService {
	return &ComplaintService{records: records, now: time.Now}
}

// Intercept validates and stores one submission, returning the new
// complaint id. The complaint row and its IPSO sub-rows are written in
// one transaction.
func (c *ComplaintService) Intercept(ctx context.Context, req api.InterceptRequest) (string, error) {
	if !req.PrivacyPolicyAccepted {
		return "", badRequest("Privacy policy must be accepted.")
	}
	if req.OriginURL == "" || len(req.InterceptedData) == 0 {
		return "", badRequest("Invalid request body.")
	}

	source, err := models.ParseComplaintSource(req.Where)
	if err != nil {
		return "", badRequest("Invalid request body.")
	}

	complaint := &models.Complaint{
		ID:        store.NewID(),
		Source:    source,
		OriginURL: sanitize.Field(req.OriginURL),
		CreatedAt: c.now().UTC(),
	}

	var fields []models.IPSOField
	var breaches []models.CodeBreach

	if source == models.SourceIPSO {
		details, ok := mapField(req.InterceptedData, "complaintDetails")
		contact, okContact := mapField(req.InterceptedData, "contactDetails")
		if !ok || !okContact {
			return "", badRequest("Missing required IPSO data.")
		}

		complaint.Title = sanitize.Field(stringField(details, "title"))
		formFields := sliceField(details, "fields")
		lines := make([]string, 0, len(formFields))
		for i, item := range formFields {
			text, _ := item.(string)
			clean := sanitize.Field(text)
			lines = append(lines, clean)
			fields = append(fields, models.IPSOField{Order: i, Value: clean})
		}
		complaint.Description = strings.Join(lines, "\n")

		complaint.EmailAddress = sanitize.Field(stringField(contact, "email_address"))
		complaint.FirstName = sanitize.Field(stringField(contact, "first_name"))
		complaint.LastName = sanitize.Field(stringField(contact, "last_name"))
		complaint.IPSOTerms = contact["terms-and-conditions"] == true

		for _, item := range sliceField(req.InterceptedData, "codeBreaches") {
			breach, ok := item.(map[string]any)
			if !ok {
				continue
			}
			breaches = append(breaches, models.CodeBreach{
				Clause:  sanitize.Field(stringField(breach, "clause")),
				Details: sanitize.Field(stringField(breach, "details")),
			})
		}
	} else {
		complaint.Title = sanitize.Field(stringField(req.InterceptedData, "title"))
		complaint.Description = sanitize.Field(stringField(req.InterceptedData, "description"))
		applyBBCFields(complaint, req.InterceptedData)
	}

	if err := c.records.CreateComplaint(ctx, complaint, fields, breaches); err != nil {
		return "", storeFailure("Failed to store data.", err)
	}
	return complaint.ID, nil
}

func applyBBCFields(c *models.Complaint, data map[string]any) {
	get := func(key string) string {
		return sanitize.Field(stringField(data, key))
	}
	c.EmailAddress = get("emailaddress")
	c.FirstName = get("firstname")
	c.LastName = get("lastname")
	c.Salutation = get("salutation")
	c.GeneralIssue1 = get("generalissue1")
	c.IntroText = get("intro_text")
	c.IsWelsh = get("iswelsh")
	c.LiveOrOnDemand = get("liveorondemand")
	c.LocalRadio = get("localradio")
	c.Make = get("make")
	c.ModerationText = get("moderation_text")
	c.Network = get("network")
	c.OutsideTheUK = get("outside_the_uk")
	c.Platform = get("platform")
	c.Programme = get("programme")
	c.ProgrammeID = get("programmeid")
	c.ReceptionText = get("reception_text")
	c.RedButtonFault = get("redbuttonfault")
	c.Region = get("region")
	c.ResponseRequired = get("responserequired")
	c.ServiceTV = get("servicetv")
	c.SoundsText = get("sounds_text")
	c.SourceURL = get("sourceurl")
	c.Subject = get("subject")
	c.TransmissionDate = get("transmissiondate")
	c.TransmissionTime = get("transmissiontime")
	c.Under18 = get("under18")
	c.VerifyForm = get("verifyform")
	c.ComplaintNature = get("complaint_nature")
	c.ComplaintNatureSounds = get("complaint_nature_sounds")
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}

func mapField(data map[string]any, key string) (map[string]any, bool) {
	value, ok := data[key].(map[string]any)
	return value, ok
}

func sliceField(data map[string]any, key string) []any {
	value, _ := data[key].([]any)
	return value
}
