package mailer

import (
	"fmt"
	"html"
	"log"
	"sort"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendTrialReminder(toEmail, tenantName string, daysRemaining int, urgency string) error
	SendUsageWarning(toEmail, tenantName string, percentages map[string]int) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderName, frontendURL string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
		frontendURL: frontendURL,
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Printf("[MAILER ERROR] Failed to send %q to %s: %v", subject, toEmail, err)
		return err
	}
	log.Printf("[MAILER] %q sent to %s", subject, toEmail)
	return nil
}

func (s *emailService) SendTrialReminder(toEmail, tenantName string, daysRemaining int, urgency string) error {
	subject, body := TrialReminderContent(tenantName, daysRemaining, urgency, s.frontendURL)
	return s.send(toEmail, subject, body)
}

func (s *emailService) SendUsageWarning(toEmail, tenantName string, percentages map[string]int) error {
	subject, body := UsageWarningContent(tenantName, percentages, s.frontendURL)
	return s.send(toEmail, subject, body)
}

// TrialReminderContent builds the subject and HTML body of a trial reminder.
func TrialReminderContent(tenantName string, daysRemaining int, urgency, frontendURL string) (string, string) {
	subject := fmt.Sprintf("Your trial ends in %d days", daysRemaining)
	switch {
	case daysRemaining == 0:
		subject = "Your trial ends today"
	case daysRemaining == 1:
		subject = "Your trial ends tomorrow"
	}

	color := "#E0A800"
	if urgency == "urgent" {
		color = "#D32F2F"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p style="color: %s; font-weight: bold;">%s</p>
			<p>Upgrade to keep uploading documents and running compliance analyses.</p>
			<p><a href="%s/billing">Choose a plan</a></p>
		</div>
	`, html.EscapeString(tenantName), color, html.EscapeString(subject), frontendURL)
	return subject, body
}

// UsageWarningContent lists each dimension's percentage in a stable order.
func UsageWarningContent(tenantName string, percentages map[string]int, frontendURL string) (string, string) {
	keys := make([]string, 0, len(percentages))
	for k := range percentages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&rows, "<li>%s: %d%%</li>", html.EscapeString(strings.ReplaceAll(k, "_", " ")), percentages[k])
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s is approaching its plan limits</h2>
			<ul>%s</ul>
			<p><a href="%s/billing">Review plans</a></p>
		</div>
	`, html.EscapeString(tenantName), rows.String(), frontendURL)
	return "You are approaching your plan limits", body
}
