package notifications

import (
	"bytes"
	"fmt"
	"html/template"
)

const signature = "Regards,\nPerfect Car Driving Training Academy"

var (
	approvalHTML = template.Must(template.New("approval").Parse(
		`<p>Hi <strong>{{.Name}}</strong>,</p><p>Your registration has been <strong>approved</strong>.</p><p>Welcome aboard!</p>`))

	contactHTML = template.Must(template.New("contact").Parse(`<h3>New Contact Form Submission</h3>
<p><strong>Name:</strong> {{if .Name}}{{.Name}}{{else}}Not provided{{end}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Message:</strong></p>
<p>{{.Body}}</p>`))
)

func ApprovalMessage(to, name string) (Message, error) {
	html, err := render(approvalHTML, map[string]string{"Name": name})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: "Registration Approved",
		Text:    fmt.Sprintf("Hi %s, your registration has been approved!", name),
		HTML:    html,
	}, nil
}

func EligibilityMessage(to, name, formURL string) Message {
	text := fmt.Sprintf("Hi %s,\nYou are now eligible to apply for the certificate.", name)
	if formURL != "" {
		text += fmt.Sprintf(" Visit the site or fill the form at %s to get the certificate.", formURL)
	}

	return Message{
		To:      to,
		Subject: "Eligible for Certificate",
		Text:    text + "\n\n" + signature,
	}
}

func OTPMessage(to, code string) Message {
	return Message{
		To:      to,
		Subject: "OTP for Registration",
		Text:    fmt.Sprintf("Hey\nYour OTP for registration is %s.\n\n%s", code, signature),
	}
}

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// ContactMessage is delivered to the academy inbox with the sender as Reply-To.
func ContactMessage(inbox string, in ContactInput) (Message, error) {
	html, err := render(contactHTML, in)
	if err != nil {
		return Message{}, err
	}

	name := in.Name
	if name == "" {
		name = "Anonymous"
	}

	return Message{
		To:      inbox,
		ReplyTo: in.Email,
		Subject: in.Subject,
		Text:    fmt.Sprintf("Message from %s (%s):\n\n%s", name, in.Email, in.Body),
		HTML:    html,
	}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
