package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/internal/repositories"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

type StaffService interface {
	List(ctx context.Context) ([]*models.Staff, error)
	Active(ctx context.Context) ([]*models.Staff, error)
	Get(ctx context.Context, id int64) (*models.Staff, error)
	Create(ctx context.Context, staff *models.Staff) error
	Update(ctx context.Context, id int64, update models.StaffUpdate) (*models.Staff, error)
	UpdateStatus(ctx context.Context, id int64, status models.StaffStatus) (*models.Staff, error)
	Delete(ctx context.Context, id int64) error
	ByDepartment(ctx context.Context, department string) ([]*models.Staff, error)
	Performance(ctx context.Context, staffID *int64) ([]models.StaffPerformance, error)
}

type staffService struct {
	store    database.Store
	validate *validator.Validate
	log      *logger.Logger
}

func NewStaffService(store database.Store, log *logger.Logger) StaffService {
	return &staffService{store: store, validate: validator.New(), log: log}
}

func (s *staffService) checkEmail(email *string) error {
	if email == nil {
		return nil
	}
	if err := s.validate.Var(*email, "email"); err != nil {
		return common.ValidationError("email", "email is not a valid address")
	}
	return nil
}

func (s *staffService) List(ctx context.Context) ([]*models.Staff, error) {
	return repositories.NewStaffRepo(s.store).List(ctx)
}

func (s *staffService) Active(ctx context.Context) ([]*models.Staff, error) {
	return repositories.NewStaffRepo(s.store).ListByStatus(ctx, models.StaffActive)
}

func (s *staffService) Get(ctx context.Context, id int64) (*models.Staff, error) {
	return repositories.NewStaffRepo(s.store).GetByID(ctx, id)
}

func (s *staffService) Create(ctx context.Context, staff *models.Staff) error {
	staff.Name = strings.TrimSpace(staff.Name)
	if staff.Name == "" {
		return common.ValidationError("name", "name is required")
	}
	staff.Email = common.OptionalString(staff.Email)
	if err := s.checkEmail(staff.Email); err != nil {
		return err
	}
	if staff.Salary != nil && staff.Salary.IsNegative() {
		return common.ValidationError("salary", "salary must not be negative")
	}
	if staff.Status != "" && !staff.Status.Valid() {
		return common.ValidationError("status", "status must be one of active, inactive, terminated")
	}

	repo := repositories.NewStaffRepo(s.store)
	if err := repo.Create(ctx, staff); err != nil {
		return err
	}
	created, err := repo.GetByID(ctx, staff.ID)
	if err != nil {
		return err
	}
	*staff = *created
	s.log.Info(s.log.WithField(ctx, "staff_id", staff.ID), "staff member created")
	return nil
}

func (s *staffService) Update(ctx context.Context, id int64, update models.StaffUpdate) (*models.Staff, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, common.ValidationError("name", "name must not be empty")
		}
		update.Name = &name
	}
	if err := s.checkEmail(update.Email); err != nil {
		return nil, err
	}
	if update.Salary != nil && update.Salary.IsNegative() {
		return nil, common.ValidationError("salary", "salary must not be negative")
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, common.ValidationError("status", "status must be one of active, inactive, terminated")
	}

	repo := repositories.NewStaffRepo(s.store)
	if err := repo.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

func (s *staffService) UpdateStatus(ctx context.Context, id int64, status models.StaffStatus) (*models.Staff, error) {
	if !status.Valid() {
		return nil, common.ValidationError("status", "status must be one of active, inactive, terminated")
	}
	repo := repositories.NewStaffRepo(s.store)
	if err := repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

func (s *staffService) Delete(ctx context.Context, id int64) error {
	return repositories.NewStaffRepo(s.store).Delete(ctx, id)
}

func (s *staffService) ByDepartment(ctx context.Context, department string) ([]*models.Staff, error) {
	if err := common.ValidateRequiredString(department, "department"); err != nil {
		return nil, err
	}
	return repositories.NewStaffRepo(s.store).ListByDepartment(ctx, strings.TrimSpace(department))
}

func (s *staffService) Performance(ctx context.Context, staffID *int64) ([]models.StaffPerformance, error) {
	if staffID != nil {
		if _, err := repositories.NewStaffRepo(s.store).GetByID(ctx, *staffID); err != nil {
			return nil, err
		}
	}
	return repositories.NewStaffRepo(s.store).Performance(ctx, staffID)
}
