package mailer

import "context"

type Message struct {
	To       string   `json:"to"`
	Subject  string   `json:"subject"`
	HTML     string   `json:"html"`
	From     string   `json:"from"`
	Metadata Metadata `json:"metadata"`
}

type Metadata struct {
	CampaignID string `json:"campaignId"`
	LeadID     string `json:"leadId"`
	TemplateID string `json:"templateId,omitempty"`
	UserID     string `json:"userId"`
}

type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Sender delivers a single outbound email. A provider-level rejection comes
// back as Result{Success: false}; err is reserved for transport failures.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}
