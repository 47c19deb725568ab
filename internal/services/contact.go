package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/models"
)

type ContactForm struct {
	Name    string `form:"name" validate:"required,max=100"`
	Email   string `form:"email" validate:"required,email"`
	Subject string `form:"subject" validate:"required,max=200"`
	Message string `form:"message" validate:"required"`
}

var contactMessages = messages{
	"name.required":    "Name is required",
	"name":             "Name is too long",
	"email.required":   "Email is required",
	"email":            "Please enter a valid email address",
	"subject.required": "Subject is required",
	"subject":          "Subject is too long",
	"message":          "Message is required",
}

func (f *ContactForm) Validate() error {
	trimAll(&f.Name, &f.Email, &f.Subject, &f.Message)
	return check(f, contactMessages).orNil()
}

type ContactService struct {
	client apiclient.Client
	logger logging.Logger
}

func NewContactService(c apiclient.Client, l logging.Logger) *ContactService {
	return &ContactService{client: c, logger: l.With("module", "contact")}
}

func (s *ContactService) Send(ctx context.Context, f *ContactForm) error {
	if err := f.Validate(); err != nil {
		return err
	}
	err := s.client.SendContact(ctx, models.ContactMessage{
		Name:    f.Name,
		Email:   f.Email,
		Subject: f.Subject,
		Message: f.Message,
	})
	if err != nil {
		s.logger.Error(ctx, "send contact message", "error", err)
		return fmt.Errorf("send contact message: %w", err)
	}
	return nil
}
