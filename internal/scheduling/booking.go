// Package scheduling builds Calendly booking links for showing requests
// and renders them as QR codes for email attachments.
package scheduling

import (
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"realty_leads_backend/platform/config"
)

// LinkBuilder constructs prefilled Calendly scheduling URLs.
type LinkBuilder struct {
	baseURL string
	owner   string
}

// NewLinkBuilder builds a LinkBuilder from config.
func NewLinkBuilder(cfg config.SchedulingLinkConfig) *LinkBuilder {
	return &LinkBuilder{
		baseURL: strings.TrimRight(cfg.GetCalendlyBaseURL(), "/"),
		owner:   cfg.GetCalendlyOwner(),
	}
}

// Enabled reports whether booking links can be generated at all.
func (b *LinkBuilder) Enabled() bool {
	return b.owner != ""
}

// BookingLink returns the scheduling URL for the given event settings,
// prefilled with the invitee's name and email. The event slug follows
// Calendly's "<calendar>-<duration>min" convention.
func (b *LinkBuilder) BookingLink(calendarType string, durationMinutes int, inviteeName, inviteeEmail string) (string, error) {
	if !b.Enabled() {
		return "", fmt.Errorf("calendly owner not configured")
	}
	if calendarType == "" {
		calendarType = "showings"
	}
	if durationMinutes <= 0 {
		durationMinutes = 30
	}

	link := fmt.Sprintf("%s/%s/%s-%dmin", b.baseURL, url.PathEscape(b.owner), url.PathEscape(calendarType), durationMinutes)

	params := url.Values{}
	if inviteeName != "" {
		params.Set("name", inviteeName)
	}
	if inviteeEmail != "" {
		params.Set("email", inviteeEmail)
	}
	if encoded := params.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return link, nil
}

// QRCodePNG renders a booking link as a PNG QR code suitable for an
// email attachment.
func QRCodePNG(link string) ([]byte, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode booking qr: %w", err)
	}
	return png, nil
}
