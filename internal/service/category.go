package service

import (
	"context"
	"fmt"

	"github.com/ovechkin-dev/marketplace/internal/models"
	"github.com/ovechkin-dev/marketplace/internal/repo"
)

type CategoryService struct {
	Repo *repo.GormRepo
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}

	cat := models.Category{
		Name:        in.Name,
		Description: in.Description,
	}
	if err := s.Repo.CreateCategory(ctx, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.Repo.GetCategories(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	return s.Repo.GetCategory(ctx, id)
}

func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}

	cat, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	cat.Name = in.Name
	cat.Description = in.Description
	if err := s.Repo.SaveCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.Repo.DeleteCategory(ctx, id)
}
