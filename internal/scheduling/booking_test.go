package scheduling

import (
	"strings"
	"testing"

	"realty_leads_backend/platform/config"
)

func TestBookingLink(t *testing.T) {
	b := NewLinkBuilder(&config.Config{
		CalendlyBaseURL: "https://calendly.com/",
		CalendlyOwner:   "acme-realty",
	})

	link, err := b.BookingLink("showings", 30, "Maria Cruz", "maria@example.com")
	if err != nil {
		t.Fatalf("BookingLink: %v", err)
	}
	if !strings.HasPrefix(link, "https://calendly.com/acme-realty/showings-30min?") {
		t.Fatalf("link = %q", link)
	}
	if !strings.Contains(link, "email=maria%40example.com") {
		t.Fatalf("link missing invitee email: %q", link)
	}
	if !strings.Contains(link, "name=Maria+Cruz") {
		t.Fatalf("link missing invitee name: %q", link)
	}
}

func TestBookingLinkDefaults(t *testing.T) {
	b := NewLinkBuilder(&config.Config{
		CalendlyBaseURL: "https://calendly.com",
		CalendlyOwner:   "acme-realty",
	})

	link, err := b.BookingLink("", 0, "", "")
	if err != nil {
		t.Fatalf("BookingLink: %v", err)
	}
	if link != "https://calendly.com/acme-realty/showings-30min" {
		t.Fatalf("link = %q", link)
	}
}

func TestBookingLinkRequiresOwner(t *testing.T) {
	b := NewLinkBuilder(&config.Config{CalendlyBaseURL: "https://calendly.com"})

	if b.Enabled() {
		t.Fatal("builder without owner must not be enabled")
	}
	if _, err := b.BookingLink("showings", 30, "x", "y"); err == nil {
		t.Fatal("expected error without owner")
	}
}

func TestQRCodePNG(t *testing.T) {
	png, err := QRCodePNG("https://calendly.com/acme-realty/showings-30min")
	if err != nil {
		t.Fatalf("QRCodePNG: %v", err)
	}
	// PNG magic bytes.
	if len(png) < 8 || png[0] != 0x89 || string(png[1:4]) != "PNG" {
		t.Fatal("output is not a PNG")
	}
}
