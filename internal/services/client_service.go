package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
)

// ClientService handles borrower profile operations
type ClientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// ClientInput carries the writable client fields
type ClientInput struct {
	Name     string  `json:"name"`
	CPF      *string `json:"cpf"`
	Phone    string  `json:"phone"`
	Email    *string `json:"email"`
	Address  string  `json:"address"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"is_active"`
}

// Create registers a new client under the user
func (s *ClientService) Create(ctx context.Context, userID uint, input ClientInput) (*models.Client, error) {
	client := &models.Client{
		UserID:   userID,
		Name:     input.Name,
		CPF:      input.CPF,
		Phone:    input.Phone,
		Email:    input.Email,
		Address:  input.Address,
		Notes:    input.Notes,
		IsActive: true,
	}
	if input.IsActive != nil {
		client.IsActive = *input.IsActive
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Update modifies an existing client
func (s *ClientService) Update(ctx context.Context, userID, id uint, input ClientInput) (*models.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	client.Name = input.Name
	client.CPF = input.CPF
	client.Phone = input.Phone
	client.Email = input.Email
	client.Address = input.Address
	client.Notes = input.Notes
	if input.IsActive != nil {
		client.IsActive = *input.IsActive
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Get returns one client with its loan count
func (s *ClientService) Get(ctx context.Context, userID, id uint) (*models.ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	loanCount, err := s.clientRepo.CountLoans(ctx, client.ID)
	if err != nil {
		return nil, err
	}

	resp := client.ToResponse(loanCount)
	return &resp, nil
}

// List returns the user's clients with per-client loan counts
func (s *ClientService) List(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.ClientResponse, int64, error) {
	clients, total, err := s.clientRepo.List(ctx, userID, query)
	if err != nil {
		return nil, 0, err
	}

	counts, err := s.clientRepo.LoanCounts(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]models.ClientResponse, 0, len(clients))
	for i := range clients {
		responses = append(responses, clients[i].ToResponse(counts[clients[i].ID]))
	}
	return responses, total, nil
}

// Delete removes a client. Clients with loans on record cannot be
// deleted; the loans must be deleted or moved first.
func (s *ClientService) Delete(ctx context.Context, userID, id uint) error {
	client, err := s.clientRepo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	loanCount, err := s.clientRepo.CountLoans(ctx, client.ID)
	if err != nil {
		return err
	}
	if loanCount > 0 {
		return ErrClientHasLoans
	}

	return s.clientRepo.Delete(ctx, userID, id)
}
