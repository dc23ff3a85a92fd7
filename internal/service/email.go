package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService interface {
	SendRentalRequestNotification(ctx context.Context, storeEmail, brandName, shelfName string) error
	SendRentalAcceptedNotification(ctx context.Context, brandEmail, shelfName, storeName string) error
	SendRentalRejectedNotification(ctx context.Context, brandEmail, shelfName, storeName string) error
	SendRentalActiveNotification(ctx context.Context, email, shelfName string, amountCents int64) error
}

type sendGridService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewSendGridService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridService) send(to, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *sendGridService) SendRentalRequestNotification(ctx context.Context, storeEmail, brandName, shelfName string) error {
	subject := "New Shelf Rental Request"
	body := fmt.Sprintf("%s requested to rent shelf %s. Review the request from your store dashboard.", brandName, shelfName)
	return s.send(storeEmail, subject, body)
}

func (s *sendGridService) SendRentalAcceptedNotification(ctx context.Context, brandEmail, shelfName, storeName string) error {
	subject := "Rental Request Accepted"
	body := fmt.Sprintf("Your rental request for shelf %s was accepted by %s. Complete payment to activate the rental.", shelfName, storeName)
	return s.send(brandEmail, subject, body)
}

func (s *sendGridService) SendRentalRejectedNotification(ctx context.Context, brandEmail, shelfName, storeName string) error {
	subject := "Rental Request Rejected"
	body := fmt.Sprintf("Your rental request for shelf %s was rejected by %s.", shelfName, storeName)
	return s.send(brandEmail, subject, body)
}

func (s *sendGridService) SendRentalActiveNotification(ctx context.Context, email, shelfName string, amountCents int64) error {
	subject := "Rental Active"
	body := fmt.Sprintf("Payment of %.2f SAR was confirmed and the rental for shelf %s is now active.", float64(amountCents)/100, shelfName)
	return s.send(email, subject, body)
}
