package clients

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/awisniewski/tiredepot-backend/pkg/db"
	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	pkgerrors "github.com/awisniewski/tiredepot-backend/pkg/errors"
	"github.com/awisniewski/tiredepot-backend/pkg/pagination"
)

// Service defines client and vehicle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Client, error)
	Update(ctx context.Context, clientID uuid.UUID, input UpdateInput) (*models.Client, error)
	Get(ctx context.Context, clientID uuid.UUID) (*models.Client, error)
	Delete(ctx context.Context, clientID uuid.UUID) error
	List(ctx context.Context, params pagination.Params, query string) (*ClientList, error)
	AddVehicle(ctx context.Context, clientID uuid.UUID, input AddVehicleInput) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, clientID uuid.UUID) ([]models.Vehicle, error)
	RemoveVehicle(ctx context.Context, clientID, vehicleID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a clients service with the required repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Client, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name required")
	}
	discount := decimal.Zero
	if input.Discount != nil {
		discount = *input.Discount
	}
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
	}
	client := &models.Client{
		Name:     input.Name,
		Phone:    input.Phone,
		Email:    input.Email,
		Discount: discount,
		Notes:    input.Notes,
	}
	created, err := s.repo.Create(ctx, client)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, clientID uuid.UUID, input UpdateInput) (*models.Client, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if _, err := s.Get(ctx, clientID); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name cannot be empty")
		}
		updates["name"] = *input.Name
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Discount != nil {
		if input.Discount.IsNegative() || input.Discount.GreaterThan(decimal.NewFromInt(100)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
		}
		updates["discount"] = *input.Discount
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if len(updates) == 0 {
		return s.Get(ctx, clientID)
	}
	if err := s.repo.Update(ctx, clientID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client")
	}
	return s.Get(ctx, clientID)
}

func (s *service) Get(ctx context.Context, clientID uuid.UUID) (*models.Client, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	client, err := s.repo.Find(ctx, clientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return client, nil
}

// Delete soft-removes the client. Clients with tires still in storage are
// protected; their deposits must release or forfeit first.
func (s *service) Delete(ctx context.Context, clientID uuid.UUID) error {
	if _, err := s.Get(ctx, clientID); err != nil {
		return err
	}
	active, err := s.repo.CountActiveDeposits(ctx, clientID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active deposits")
	}
	if active > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "client still has tires in storage").
			WithDetails(map[string]any{"active_deposits": active})
	}
	if err := s.repo.SoftDelete(ctx, clientID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete client")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params, query string) (*ClientList, error) {
	list, err := s.repo.List(ctx, params, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}
	return list, nil
}

func (s *service) AddVehicle(ctx context.Context, clientID uuid.UUID, input AddVehicleInput) (*models.Vehicle, error) {
	if _, err := s.Get(ctx, clientID); err != nil {
		return nil, err
	}
	if input.Make == "" || input.Model == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle make and model required")
	}
	vehicle := &models.Vehicle{
		ClientID:           clientID,
		Make:               input.Make,
		Model:              input.Model,
		Year:               input.Year,
		RegistrationNumber: input.RegistrationNumber,
		TireSize:           input.TireSize,
	}
	created, err := s.repo.CreateVehicle(ctx, vehicle)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "registration number already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return created, nil
}

func (s *service) ListVehicles(ctx context.Context, clientID uuid.UUID) ([]models.Vehicle, error) {
	if _, err := s.Get(ctx, clientID); err != nil {
		return nil, err
	}
	vehicles, err := s.repo.ListVehicles(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return vehicles, nil
}

func (s *service) RemoveVehicle(ctx context.Context, clientID, vehicleID uuid.UUID) error {
	if vehicleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	vehicles, err := s.ListVehicles(ctx, clientID)
	if err != nil {
		return err
	}
	for _, vehicle := range vehicles {
		if vehicle.ID == vehicleID {
			if err := s.repo.DeleteVehicle(ctx, vehicleID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle")
			}
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
}
