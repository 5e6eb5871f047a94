package leads

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/BearBump/ShipDesk/internal/apperr"
	"github.com/BearBump/ShipDesk/internal/models"
	"github.com/BearBump/ShipDesk/internal/storage/pgshipments"
	"github.com/BearBump/ShipDesk/internal/tracknum"
)

// Repository — срез хранилища, нужный сервису лидов.
type Repository interface {
	CreateLead(ctx context.Context, in models.LeadCreateInput) (*models.Lead, error)
	GetLead(ctx context.Context, id uint64) (*models.Lead, error)
	UpdateLeadStatus(ctx context.Context, id uint64, status string) (*models.Lead, error)
	TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error)
	ConvertLead(ctx context.Context, leadID uint64, trackingNumber string, in models.ShipmentCreateInput) (*models.Shipment, error)
}

type Service struct {
	repo  Repository
	alloc tracknum.Allocator
}

func New(repo Repository, alloc tracknum.Allocator) *Service {
	return &Service{repo: repo, alloc: alloc}
}

func (s *Service) CreateLead(ctx context.Context, in models.LeadCreateInput) (*models.Lead, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.Wrap(apperr.ErrInvalidInput, "lead name is required")
	}
	if strings.TrimSpace(in.Contact) == "" {
		return nil, errors.Wrap(apperr.ErrInvalidInput, "lead contact is required")
	}

	lead, err := s.repo.CreateLead(ctx, in)
	if err != nil {
		return nil, errors.Wrap(err, "create lead")
	}
	return lead, nil
}

func (s *Service) GetLead(ctx context.Context, id uint64) (*models.Lead, error) {
	return s.repo.GetLead(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id uint64, status string) (*models.Lead, error) {
	if !models.IsLeadStatus(status) {
		return nil, errors.Wrapf(apperr.ErrInvalidInput, "unknown lead status %q", status)
	}

	lead, err := s.repo.UpdateLeadStatus(ctx, id, status)
	if err != nil {
		return nil, errors.Wrap(err, "update lead status")
	}
	return lead, nil
}

// ConvertToShipment создаёт отправление из лида. Владелец берётся из
// clientID лида внутри хранилища, поэтому детали здесь его не содержат.
// Гонка по уникальности трек-номера решается повторной генерацией,
// как и при обычном создании отправления.
func (s *Service) ConvertToShipment(ctx context.Context, leadID uint64, in models.ShipmentCreateInput) (*models.Shipment, error) {
	for attempt := 0; attempt < s.alloc.MaxAttempts(); attempt++ {
		tn, err := s.alloc.Allocate(ctx, s.repo.TrackingNumberExists)
		if err != nil {
			return nil, err
		}

		sh, err := s.repo.ConvertLead(ctx, leadID, tn, in)
		if err != nil {
			if pgshipments.IsUniqueViolation(err) {
				continue
			}
			return nil, errors.Wrap(err, "convert lead")
		}
		return sh, nil
	}
	return nil, apperr.ErrAllocationExhausted
}
