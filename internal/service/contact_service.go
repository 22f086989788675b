package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/belovedzguard/beloved-api/internal/mail"
	"github.com/belovedzguard/beloved-api/pkg/errors"
	"github.com/belovedzguard/beloved-api/pkg/logger"
	"github.com/belovedzguard/beloved-api/pkg/redact"
)

var contactEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Contact form errors.
var (
	ErrContactFieldsRequired = errors.ErrMissingField.WithMessage("All fields are required: name, email, subject, and message")
	ErrContactInvalidEmail   = errors.ErrInvalidFormat.WithMessage("Invalid email format")
)

// ContactForm is a message sent through the public contact form.
type ContactForm struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,contact_email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// ContactResult is returned once a message was relayed.
type ContactResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ContactRoute says where relayed messages go.
type ContactRoute struct {
	From      string
	Recipient string
}

// ContactService relays contact form messages to the site inbox.
type ContactService struct {
	mailer   mail.Mailer
	route    ContactRoute
	validate *validator.Validate
	log      logger.Logger
}

// NewContactService creates a contact service.
func NewContactService(mailer mail.Mailer, route ContactRoute, log logger.Logger) *ContactService {
	v := validator.New()
	_ = v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return contactEmailPattern.MatchString(fl.Field().String())
	})

	if route.Recipient == "" {
		route.Recipient = route.From
	}
	return &ContactService{
		mailer:   mailer,
		route:    route,
		validate: v,
		log:      log,
	}
}

// Submit validates the form and mails it to the inbox with the sender as
// reply-to address.
func (s *ContactService) Submit(ctx context.Context, form *ContactForm) (*ContactResult, error) {
	if err := s.check(form); err != nil {
		return nil, err
	}

	msg, err := renderContact(form, s.route)
	if err != nil {
		return nil, errors.ErrInternal.WithError(err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error("contact form delivery failed",
			logger.String("reply_to", redact.Email(form.Email)),
			logger.Error(err),
		)
		return nil, errors.ErrMailDelivery.WithError(err)
	}

	s.log.Info("contact form relayed", logger.String("reply_to", redact.Email(form.Email)))
	return &ContactResult{
		Success: true,
		Message: "Your message has been sent successfully!",
	}, nil
}

func (s *ContactService) check(form *ContactForm) error {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrValidationFailed.WithError(err)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return ErrContactFieldsRequired
		}
	}
	return ErrContactInvalidEmail
}

type contactView struct {
	Name    string
	Email   string
	Subject string
	Lines   []string
}

var lineBreak = regexp.MustCompile(`\r?\n`)

var contactHTML = template.Must(template.New("contact").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">New Contact Form Submission</h2>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 5px;">
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Subject:</strong> {{.Subject}}</p>
  </div>
  <div style="margin-top: 20px; padding: 20px; background-color: #fff; border-left: 4px solid #4CAF50;">
    <h3 style="color: #333; margin-top: 0;">Message:</h3>
    <p style="color: #555; line-height: 1.6;">{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
  </div>
  <hr style="margin-top: 30px; border: none; border-top: 1px solid #ddd;">
  <p style="color: #777; font-size: 12px;">
    This email was sent from your website's contact form.
    You can reply directly to {{.Email}} to respond to this message.
  </p>
</div>`))

func renderContact(form *ContactForm, route ContactRoute) (*mail.Message, error) {
	var html bytes.Buffer
	err := contactHTML.Execute(&html, contactView{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
		Lines:   lineBreak.Split(form.Message, -1),
	})
	if err != nil {
		return nil, fmt.Errorf("render contact email: %w", err)
	}

	text := fmt.Sprintf("Name: %s\nEmail: %s\nSubject: %s\n\nMessage:\n%s\n",
		form.Name, form.Email, form.Subject, form.Message)

	return &mail.Message{
		From:    route.From,
		To:      route.Recipient,
		ReplyTo: form.Email,
		Subject: "Contact Form: " + form.Subject,
		Text:    text,
		HTML:    html.String(),
	}, nil
}
