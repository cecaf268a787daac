package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/mailer"
)

const (
	ConfirmationSubject = "Registration Confirmed - District 79 Fall Crawls"
	LowSpotsThreshold   = 5
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background-color: #ECC67F; color: white; padding: 24px 20px; text-align: center; border-radius: 8px 8px 0 0; }
.content { padding: 30px; border: 2px solid #ECC67F; border-top: none; border-radius: 0 0 8px 8px; }
.info-box { background-color: #FFF8E7; border-left: 4px solid #ECC67F; padding: 15px; margin: 20px 0; }
.info-box strong { color: #B8935E; }
.alert { background-color: #fff3cd; border: 1px solid #ffc107; padding: 10px; border-radius: 5px; }
.footer { text-align: center; margin-top: 30px; color: #666; font-size: 14px; }
</style>
</head>
<body>
{{template "body" .}}
<div class="footer">
<p>District 79 - NYC Public Schools</p>
<p>This is an automated message. Please do not reply directly to this message.</p>
</div>
</body>
</html>{{end}}`

const confirmationBody = `{{define "body"}}
<div class="header"><h1>Registration Confirmed!</h1></div>
<div class="content">
<p>Dear {{.FirstName}} {{.LastName}},</p>
<p>Thank you for registering for the <strong>District 79 Fall Crawls</strong>! We're excited to have you join us.</p>
<div class="info-box">
<h3>Your Registration Details:</h3>
<p><strong>Date:</strong> {{.DateDisplay}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
{{if .Description}}<p><strong>Details:</strong> {{.Description}}</p>{{end}}
<p><strong>Location:</strong> {{.LocationName}}</p>
{{if .LocationAddress}}<p><strong>Address:</strong> {{.LocationAddress}}</p>{{end}}
</div>
<h3>What to Expect:</h3>
<ul>
<li>Information session about District 79 programs</li>
<li>Site visit to a Referral Center and D79 site</li>
<li>Opportunity to meet staff and make connections</li>
</ul>
<h3>Important Reminders:</h3>
<ul>
<li>Please arrive 10 minutes early</li>
<li>Bring a valid NYCPS ID</li>
</ul>
<p>We look forward to seeing you!</p>
<p><strong>District 79 Team</strong><br>Alternative Schools &amp; Programs</p>
</div>
{{end}}`

const adminBody = `{{define "body"}}
<div class="header"><h2>New Registration - D79 Fall Crawls</h2></div>
<div class="content">
<p>A new participant has registered for the D79 Fall Crawls:</p>
<div class="info-box">
<p><strong>Name:</strong> {{.FirstName}} {{.LastName}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>School:</strong> {{.School}}</p>
<p><strong>Crawl Date:</strong> {{.DateDisplay}}</p>
<p><strong>Location:</strong> {{.LocationName}}</p>
<p><strong>Spots Remaining:</strong>
<span style="color: {{if .Low}}#d9534f{{else}}#5cb85c{{end}}; font-weight: bold;">{{.RemainingSpots}} / {{.DayCapacity}}</span></p>
</div>
{{if .Low}}<p class="alert"><strong>Alert:</strong> Only {{.RemainingSpots}} spots remaining for this crawl!</p>{{end}}
<p style="color: #666; font-size: 14px;">Registration timestamp: {{.RegisteredAt.Format "Jan 2, 2006 3:04 PM"}}</p>
</div>
{{end}}`

const reminderBody = `{{define "body"}}
<div class="header"><h1>See You Tomorrow!</h1></div>
<div class="content">
<p>Dear {{.FirstName}} {{.LastName}},</p>
<p>This is a friendly reminder that your <strong>District 79 Fall Crawl</strong> is tomorrow.</p>
<div class="info-box">
<p><strong>Date:</strong> {{.DateDisplay}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
<p><strong>Location:</strong> {{.LocationName}}</p>
{{if .LocationAddress}}<p><strong>Address:</strong> {{.LocationAddress}}</p>{{end}}
</div>
<p>Please arrive 10 minutes early and bring a valid NYCPS ID.</p>
<p><strong>District 79 Team</strong></p>
</div>
{{end}}`

var (
	confirmationTmpl = template.Must(template.Must(template.New("confirmation").Parse(layout)).Parse(confirmationBody))
	adminTmpl        = template.Must(template.Must(template.New("admin").Parse(layout)).Parse(adminBody))
	reminderTmpl     = template.Must(template.Must(template.New("reminder").Parse(layout)).Parse(reminderBody))
)

type ConfirmationData struct {
	FirstName       string
	LastName        string
	DateDisplay     string
	Time            string
	Description     string
	LocationName    string
	LocationAddress string
}

type AdminData struct {
	FirstName      string
	LastName       string
	Email          string
	School         string
	DateDisplay    string
	LocationName   string
	RemainingSpots int
	DayCapacity    int
	RegisteredAt   time.Time
}

// Low reports whether the remaining spots warrant the alert banner.
func (d AdminData) Low() bool { return d.RemainingSpots <= LowSpotsThreshold }

type ReminderData struct {
	FirstName       string
	LastName        string
	DateDisplay     string
	ShortDate       string
	Time            string
	LocationName    string
	LocationAddress string
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func Confirmation(to string, d ConfirmationData) (mailer.Message, error) {
	html, err := render(confirmationTmpl, d)
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{To: to, Subject: ConfirmationSubject, HTML: html}, nil
}

func AdminNotification(to string, d AdminData) (mailer.Message, error) {
	html, err := render(adminTmpl, d)
	if err != nil {
		return mailer.Message{}, err
	}
	subject := fmt.Sprintf("New Registration - %s %s - D79 Fall Crawls", d.FirstName, d.LastName)
	return mailer.Message{To: to, Subject: subject, HTML: html}, nil
}

func Reminder(to string, d ReminderData) (mailer.Message, error) {
	html, err := render(reminderTmpl, d)
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{To: to, Subject: "Reminder: D79 Fall Crawl Tomorrow - " + d.ShortDate, HTML: html}, nil
}
