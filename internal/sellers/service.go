package sellers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tapshop/tapshop-backend/pkg/db"
	"github.com/tapshop/tapshop-backend/pkg/db/models"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
	"github.com/tapshop/tapshop-backend/pkg/validation"
)

const slugCreateAttempts = 5

type sellerRepository interface {
	Create(ctx context.Context, seller *models.Seller) (*models.Seller, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
	FindByPhone(ctx context.Context, phone string) (*models.Seller, error)
	FindBySlug(ctx context.Context, slug string) (*models.Seller, error)
	Update(ctx context.Context, seller *models.Seller) error
}

// Service exposes seller profile operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*SellerDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*SellerDTO, error)
	GetByPhone(ctx context.Context, phone string) (*SellerDTO, error)
	GetBySlug(ctx context.Context, slug string) (*PublicSellerDTO, error)
	UpdateSettings(ctx context.Context, sellerID uuid.UUID, input UpdateSettingsInput) (*SellerDTO, error)
}

type service struct {
	repo sellerRepository
}

// NewService builds a seller service with the provided repository.
func NewService(repo sellerRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*SellerDTO, error) {
	shopName := strings.TrimSpace(input.ShopName)
	if shopName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name is required")
	}
	phone, err := validation.ValidatePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByPhone(ctx, phone); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup seller by phone")
	}

	slug := Slugify(shopName)
	for attempt := 0; attempt < slugCreateAttempts; attempt++ {
		candidate := slug
		if attempt > 0 {
			candidate = WithSuffix(slug)
		}
		seller := &models.Seller{
			Phone:    phone,
			ShopName: shopName,
			ShopSlug: candidate,
		}
		created, err := s.repo.Create(ctx, seller)
		if err == nil {
			return toDTO(created), nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seller")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not assign a unique shop slug")
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*SellerDTO, error) {
	seller, err := s.findSeller(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(seller), nil
}

func (s *service) GetByPhone(ctx context.Context, phone string) (*SellerDTO, error) {
	normalized, err := validation.ValidatePhone(phone)
	if err != nil {
		return nil, err
	}
	seller, err := s.repo.FindByPhone(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup seller by phone")
	}
	return toDTO(seller), nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*PublicSellerDTO, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop slug is required")
	}
	seller, err := s.repo.FindBySlug(ctx, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup shop by slug")
	}
	return ToPublicDTO(seller), nil
}

func (s *service) UpdateSettings(ctx context.Context, sellerID uuid.UUID, input UpdateSettingsInput) (*SellerDTO, error) {
	seller, err := s.findSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if input.ShopName != nil {
		trimmed := strings.TrimSpace(*input.ShopName)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name cannot be empty")
		}
		seller.ShopName = trimmed
	}
	if input.PromptPayID != nil {
		if *input.PromptPayID == "" {
			seller.PromptPayID = nil
		} else {
			normalized, err := validation.ValidatePromptPayID(*input.PromptPayID)
			if err != nil {
				return nil, err
			}
			seller.PromptPayID = &normalized
		}
	}
	if input.PickupAddress != nil {
		if *input.PickupAddress == "" {
			seller.PickupAddress = nil
		} else {
			validated, err := validation.ValidateAddress(*input.PickupAddress)
			if err != nil {
				return nil, err
			}
			seller.PickupAddress = &validated
		}
	}
	if input.PickupLat != nil {
		seller.PickupLat = input.PickupLat
	}
	if input.PickupLng != nil {
		seller.PickupLng = input.PickupLng
	}
	if input.ProfileImageURL != nil {
		seller.ProfileImageURL = input.ProfileImageURL
	}
	if input.LineUserID != nil {
		if *input.LineUserID == "" {
			seller.LineUserID = nil
		} else {
			seller.LineUserID = input.LineUserID
		}
	}

	if err := s.repo.Update(ctx, seller); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update seller")
	}
	return toDTO(seller), nil
}

func (s *service) findSeller(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	seller, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup seller")
	}
	return seller, nil
}
