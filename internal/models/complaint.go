package models

import (
	"fmt"
	"strings"
	"time"
)

// ComplaintSource identifies which regulator form a complaint was
// intercepted from.
type ComplaintSource string

const (
	SourceBBC  ComplaintSource = "BBC"
	SourceIPSO ComplaintSource = "IPSO"
)

// ParseComplaintSource normalizes a raw source value. An empty value
// defaults to BBC, matching legacy submitters that never send it.
func ParseComplaintSource(raw string) (ComplaintSource, error) {
	value := ComplaintSource(strings.ToUpper(strings.TrimSpace(raw)))
	if value == "" {
		return SourceBBC, nil
	}
	switch value {
	case SourceBBC, SourceIPSO:
		return value, nil
	}
	return "", fmt.Errorf("invalid complaint source: %s", raw)
}

// Complaint is one intercepted complaint record. The BBC form carries
// the full field set; IPSO submissions fill only the contact and
// description columns and hang their ordered fields and code breaches
// off the complaint as sub-rows.
type Complaint struct {
	ID          string          `json:"id"`
	Source      ComplaintSource `json:"source"`
	OriginURL   string          `json:"originUrl,omitempty"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`

	EmailAddress string `json:"emailaddress,omitempty"`
	FirstName    string `json:"firstname,omitempty"`
	LastName     string `json:"lastname,omitempty"`
	Salutation   string `json:"salutation,omitempty"`

	GeneralIssue1         string `json:"generalissue1,omitempty"`
	IntroText             string `json:"intro_text,omitempty"`
	IsWelsh               string `json:"iswelsh,omitempty"`
	LiveOrOnDemand        string `json:"liveorondemand,omitempty"`
	LocalRadio            string `json:"localradio,omitempty"`
	Make                  string `json:"make,omitempty"`
	ModerationText        string `json:"moderation_text,omitempty"`
	Network               string `json:"network,omitempty"`
	OutsideTheUK          string `json:"outside_the_uk,omitempty"`
	Platform              string `json:"platform,omitempty"`
	Programme             string `json:"programme,omitempty"`
	ProgrammeID           string `json:"programmeid,omitempty"`
	ReceptionText         string `json:"reception_text,omitempty"`
	RedButtonFault        string `json:"redbuttonfault,omitempty"`
	Region                string `json:"region,omitempty"`
	ResponseRequired      string `json:"responserequired,omitempty"`
	ServiceTV             string `json:"servicetv,omitempty"`
	SoundsText            string `json:"sounds_text,omitempty"`
	SourceURL             string `json:"sourceurl,omitempty"`
	Subject               string `json:"subject,omitempty"`
	TransmissionDate      string `json:"transmissiondate,omitempty"`
	TransmissionTime      string `json:"transmissiontime,omitempty"`
	Under18               string `json:"under18,omitempty"`
	VerifyForm            string `json:"verifyform,omitempty"`
	ComplaintNature       string `json:"complaint_nature,omitempty"`
	ComplaintNatureSounds string `json:"complaint_nature_sounds,omitempty"`

	IPSOTerms bool      `json:"ipso_terms,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}

// IPSOField is one ordered free-text field of an IPSO complaint.
type IPSOField struct {
	Order int    `json:"field_order"`
	Value string `json:"field_value"`
}

// CodeBreach is one alleged Editors' Code breach attached to an IPSO
// complaint.
type CodeBreach struct {
	Clause  string `json:"clause"`
	Details string `json:"details"`
}
