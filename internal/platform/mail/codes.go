package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"
)

var (
	verificationTmpl = template.Must(template.New("verify").Parse(
		`Your verification code is {{.Code}}.

Enter it on the sign-up page to activate your account. The code expires in {{.TTL}}.

If you did not create an account, you can ignore this email.
`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`Your password reset code is {{.Code}}.

Enter it on the reset page together with your new password. The code expires in {{.TTL}}.

If you did not request a reset, you can ignore this email; your password stays the same.
`))
)

// CodeSender renders one-time code emails and hands them to a Mailer.
type CodeSender struct {
	mailer Mailer
	ttl    time.Duration
}

// NewCodeSender returns a sender whose emails state the given code lifetime.
func NewCodeSender(mailer Mailer, ttl time.Duration) *CodeSender {
	return &CodeSender{mailer: mailer, ttl: ttl}
}

// SendVerificationCode mails a registration code.
func (s *CodeSender) SendVerificationCode(ctx context.Context, email, code string) error {
	return s.send(ctx, email, "Verify your email", verificationTmpl, code)
}

// SendPasswordResetCode mails a password reset code.
func (s *CodeSender) SendPasswordResetCode(ctx context.Context, email, code string) error {
	return s.send(ctx, email, "Reset your password", resetTmpl, code)
}

func (s *CodeSender) send(ctx context.Context, to, subject string, tmpl *template.Template, code string) error {
	var body bytes.Buffer
	data := struct {
		Code string
		TTL  string
	}{Code: code, TTL: humanMinutes(s.ttl)}
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return s.mailer.Send(ctx, Message{To: to, Subject: subject, Body: body.String()})
}

func humanMinutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
