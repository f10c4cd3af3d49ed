// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"gorm.io/gorm"

	"github.com/r2certify/r2v3-backend/internal/config"
	"github.com/r2certify/r2v3-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

func (s *NotificationService) SendWelcomeEmail(user *models.User, tenant *models.Tenant) error {
	tmpl := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"Name":         user.FirstName,
		"CompanyName":  tenant.Name,
		"DashboardURL": fmt.Sprintf("%s/onboarding", s.config.Frontend.BaseURL),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

func (s *NotificationService) SendLicenseActivatedEmail(user *models.User, license *models.License) error {
	tmpl := s.getEmailTemplate("license_activated")

	data := map[string]interface{}{
		"Name":      user.FirstName,
		"PlanName":  license.PlanName,
		"IntakeURL": fmt.Sprintf("%s/intake", s.config.Frontend.BaseURL),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

func (s *NotificationService) SendIntakeSubmittedEmail(user *models.User, form *models.IntakeForm, totalQuestions int) error {
	tmpl := s.getEmailTemplate("intake_submitted")

	data := map[string]interface{}{
		"Name":           user.FirstName,
		"CompanyName":    form.LegalCompanyName,
		"Appendices":     []string(form.ApplicableAppendices),
		"TotalQuestions": totalQuestions,
		"AssessmentURL":  fmt.Sprintf("%s/assessment", s.config.Frontend.BaseURL),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

// SendExportEmail delivers a generated report link.
func (s *NotificationService) SendExportEmail(to string, downloadURL string, format models.ExportFormat) error {
	tmpl := s.getEmailTemplate("export_ready")

	data := map[string]interface{}{
		"DownloadURL": downloadURL,
		"Format":      string(format),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(to, tmpl.Subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" || s.config.Email.SMTPUsername == "" {
		// Email not configured, just log
		fmt.Printf("Email would be sent to %s: %s\n", to, subject)
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to R2 Certify",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Name}}!</h2>
	<p>Your account for {{.CompanyName}} is ready. Start your certification journey by completing onboarding:</p>
	<a href="{{.DashboardURL}}">Start Onboarding</a>
	<p>Best regards,<br>R2 Certify Team</p>
</body>
</html>`,
		},
		"license_activated": {
			Subject: "Your R2 Certify License is Active",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>License Activated</h2>
	<p>Hello {{.Name}},</p>
	<p>Your {{.PlanName}} plan is active. The next step is the intake questionnaire that scopes your certification:</p>
	<a href="{{.IntakeURL}}">Open Intake Form</a>
	<p>Best regards,<br>R2 Certify Team</p>
</body>
</html>`,
		},
		"intake_submitted": {
			Subject: "Intake Submitted - Assessment Ready",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Intake Submitted</h2>
	<p>Hello {{.Name}},</p>
	<p>The intake form for {{.CompanyName}} is submitted. Your assessment covers {{.TotalQuestions}} questions across the core requirements{{if .Appendices}} and appendices {{range .Appendices}}{{.}} {{end}}{{end}}.</p>
	<a href="{{.AssessmentURL}}">Start Assessment</a>
	<p>Best regards,<br>R2 Certify Team</p>
</body>
</html>`,
		},
		"export_ready": {
			Subject: "Your R2 Certify Report is Ready",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Report Ready</h2>
	<p>Your {{.Format}} report has been generated. The download link below is valid for a limited time:</p>
	<a href="{{.DownloadURL}}">Download Report</a>
	<p>Best regards,<br>R2 Certify Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
