package services

import (
	"context"
	"errors"
	"strings"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/internal/repositories"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id int64, update models.CategoryUpdate) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	store database.Store
	log   *logger.Logger
}

func NewCategoryService(store database.Store, log *logger.Logger) CategoryService {
	return &categoryService{store: store, log: log}
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	return repositories.NewCategoryRepo(s.store).List(ctx)
}

func (s *categoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	return repositories.NewCategoryRepo(s.store).GetByID(ctx, id)
}

// ensureUniqueName fails when another category already uses name, ignoring case
// and surrounding spaces. exceptID is the category being renamed, zero on create.
func ensureUniqueName(ctx context.Context, repo repositories.CategoryRepository, name string, exceptID int64) error {
	existing, err := repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != exceptID {
		return common.DuplicateName("category", name)
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return common.ValidationError("name", "name is required")
	}
	category.Description = common.OptionalString(category.Description)

	repo := repositories.NewCategoryRepo(s.store)
	if err := ensureUniqueName(ctx, repo, category.Name, 0); err != nil {
		return err
	}
	if err := repo.Create(ctx, category); err != nil {
		return err
	}
	s.log.Info(s.log.WithField(ctx, "category", category.Name), "category created")
	return nil
}

func (s *categoryService) Update(ctx context.Context, id int64, update models.CategoryUpdate) (*models.Category, error) {
	repo := repositories.NewCategoryRepo(s.store)
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, common.ValidationError("name", "name must not be empty")
		}
		update.Name = &name
		if err := ensureUniqueName(ctx, repo, name, id); err != nil {
			return nil, err
		}
	}
	if err := repo.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

// Delete refuses while any inventory item references the category.
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	repo := repositories.NewCategoryRepo(s.store)
	if _, err := repo.GetByID(ctx, id); err != nil {
		return err
	}
	items, err := repo.CountItems(ctx, id)
	if err != nil {
		return err
	}
	if items > 0 {
		return common.InUse("category", items)
	}
	return repo.Delete(ctx, id)
}
