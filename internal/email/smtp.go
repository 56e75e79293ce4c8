package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendLeadConfirmation(ctx context.Context, toEmail, templateName string, data LeadEmailData, attachments ...Attachment) error {
	subject := leadSubject(templateName)
	content, err := renderEmailTemplate(leadTemplateFile(templateName), leadEmailView{
		Title:      subject,
		Heading:    subject,
		FirstName:  data.FirstName,
		Message:    data.Message,
		Address:    data.Address,
		ListingID:  data.ListingID,
		BookingURL: data.BookingURL,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content, attachments...)
}

func (s *SMTPSender) SendAgentNotification(ctx context.Context, toEmail string, data AgentEmailData) error {
	subject := fmt.Sprintf(subjectAgentAlertFmt, data.Route, data.LeadName, data.Score)
	content, err := renderEmailTemplate("agent_alert.html", agentEmailView{
		Title:     subject,
		Heading:   "New lead assigned",
		LeadName:  data.LeadName,
		LeadEmail: data.LeadEmail,
		LeadPhone: data.LeadPhone,
		Route:     data.Route,
		Score:     data.Score,
		Message:   data.Message,
		ListingID: data.ListingID,
		SourceURL: data.SourceURL,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}
