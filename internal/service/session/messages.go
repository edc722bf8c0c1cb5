package session

import (
	"context"
	"strings"

	"github.com/geocoder89/drivingschool/internal/apperr"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/notifications"
	"github.com/geocoder89/drivingschool/internal/otp"
)

type SendOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Msg     string `json:"msg"`
}

// SendOTP stores a fresh code for the address and mails it. The code is never
// part of the response.
func (s *Service) SendOTP(ctx context.Context, req SendOTPRequest) error {
	email := user.NormalizeEmail(req.Email)
	if !user.ValidEmail(email) {
		return apperr.Validation("invalid_request", "Invalid email address")
	}

	code, err := otp.NewCode()
	if err != nil {
		return apperr.Internal("Otp not sent", err)
	}

	if err := s.otps.Save(ctx, email, code, s.cfg.OTPTTL); err != nil {
		return apperr.Internal("Otp not sent", err)
	}

	if err := s.mailer.Send(ctx, notifications.OTPMessage(email, code)); err != nil {
		return apperr.Internal("Otp not sent", err)
	}

	return nil
}

func (s *Service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) error {
	ok, err := s.otps.Consume(ctx, user.NormalizeEmail(req.Email), strings.TrimSpace(req.OTP))
	if err != nil {
		return apperr.Internal("Something went wrong while verifying the otp", err)
	}
	if !ok {
		return apperr.Validation("invalid_otp", "Invalid or expired OTP")
	}
	return nil
}

// SendContact forwards a contact form submission to the academy inbox.
func (s *Service) SendContact(ctx context.Context, req ContactRequest) error {
	in := notifications.ContactInput{
		Name:    strings.TrimSpace(req.Name),
		Email:   user.NormalizeEmail(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Body:    strings.TrimSpace(req.Msg),
	}

	if in.Subject == "" || in.Email == "" || in.Body == "" {
		return apperr.Validation("invalid_request", "All fields (subject, email, message) are required")
	}
	if !user.ValidEmail(in.Email) {
		return apperr.Validation("invalid_request", "Invalid email address")
	}
	if s.cfg.ContactInbox == "" {
		return apperr.Internal("Message not sent", errNoInbox)
	}

	msg, err := notifications.ContactMessage(s.cfg.ContactInbox, in)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		return apperr.Internal("Internal Server Error while sending email", err)
	}

	return nil
}
