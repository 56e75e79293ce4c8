package email

const (
	subjectLeadCapture     = "Thanks for reaching out"
	subjectPropertyInquiry = "We received your property inquiry"
	subjectHomeValuation   = "Your home valuation request"
	subjectShowingRequest  = "Your showing request"
	subjectSupportTicket   = "We received your support request"
	subjectAgentAlertFmt   = "New %s lead: %s (score %d)"
)

var leadSubjects = map[string]string{
	"lead_capture":     subjectLeadCapture,
	"property_inquiry": subjectPropertyInquiry,
	"home_valuation":   subjectHomeValuation,
	"showing_request":  subjectShowingRequest,
	"support_ticket":   subjectSupportTicket,
}

func leadSubject(template string) string {
	if subject, ok := leadSubjects[template]; ok {
		return subject
	}
	return subjectLeadCapture
}
