package services

import (
	"bytes"
	"html/template"
	"net/url"
	"strconv"
	"time"
)

var resetPasswordTmpl = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Taskify password reset</h2>
  <p>We received a request to reset your Taskify account password.</p>
  <p><a href="{{.Link}}" style="background-color: #007bff; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px;">Reset my password</a></p>
  <p>Or copy and paste this link in your browser:</p>
  <p style="word-break: break-all;">{{.Link}}</p>
  <ul>
    <li>This link expires in <strong>{{.ExpiresIn}}</strong>.</li>
    <li>If you didn't request this reset, ignore this email. Your password won't change.</li>
  </ul>
  <p>The Taskify Team</p>
</body>
</html>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to Taskify, {{.Name}}!</h2>
  <p>Thanks for joining us. You're all set to start organizing your tasks.</p>
  <p><a href="{{.Link}}" style="background-color: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Get started</a></p>
  <p>Happy organizing!<br>The Taskify Team</p>
</div>`))

// ResetLink builds <frontend>/changePassword?token=<token>.
func ResetLink(frontendURL, token string) string {
	q := url.Values{}
	q.Set("token", token)
	return frontendURL + "/changePassword?" + q.Encode()
}

func ResetPasswordEmail(to, link string, ttl time.Duration) (Message, error) {
	var buf bytes.Buffer
	err := resetPasswordTmpl.Execute(&buf, struct {
		Link      string
		ExpiresIn string
	}{Link: link, ExpiresIn: humanDuration(ttl)})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Reset your Taskify password", HTML: buf.String()}, nil
}

func WelcomeEmail(to, name, frontendURL string) (Message, error) {
	var buf bytes.Buffer
	err := welcomeTmpl.Execute(&buf, struct {
		Name string
		Link string
	}{Name: name, Link: frontendURL + "/login"})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Welcome to Taskify!", HTML: buf.String()}, nil
}

func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return plural(int(d/time.Hour), "hour")
	}
	return plural(int(d.Round(time.Minute)/time.Minute), "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
