package service

import (
	"context"
	"strings"

	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/internal/repository"
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates and stores a new contact message. ID and CreatedAt are
	// populated from the stored row.
	Submit(ctx context.Context, in ContactInput) (*model.ContactSubmission, error)

	// List returns submissions newest first.
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error)
}

// ContactInput is the contact form as submitted.
type ContactInput struct {
	Name    string `json:"name" validate:"min=2,max=100"`
	Email   string `json:"email" validate:"email,max=254"`
	Message string `json:"message" validate:"min=10,max=5000"`
}

func (in *ContactInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
}

const maxContactListLimit = 200

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo repository.ContactRepository
}

// NewContactService creates a ContactService backed by the given repository.
func NewContactService(repo repository.ContactRepository) ContactService {
	return &contactServiceImpl{repo: repo}
}

func (s *contactServiceImpl) Submit(ctx context.Context, in ContactInput) (*model.ContactSubmission, error) {
	in.normalize()
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	c := &model.ContactSubmission{
		Name:    in.Name,
		Email:   in.Email,
		Message: in.Message,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List clamps the limit to maxContactListLimit; zero means the maximum.
func (s *contactServiceImpl) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error) {
	if opts.Limit <= 0 || opts.Limit > maxContactListLimit {
		opts.Limit = maxContactListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.repo.List(ctx, opts)
}
