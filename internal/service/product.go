package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ovechkin-dev/marketplace/internal/logging"
	"github.com/ovechkin-dev/marketplace/internal/models"
	"github.com/ovechkin-dev/marketplace/internal/repo"
)

type ProductService struct {
	Repo   *repo.GormRepo
	Store  Uploader
	Index  Indexer
	Events Publisher
}

type ImagePayload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	CategoryID  uint
	Image       *ImagePayload
}

func (s *ProductService) validate(ctx context.Context, in ProductInput) error {
	if in.Name == "" || in.CategoryID == 0 {
		return fmt.Errorf("%w: product name, price, and category are required", ErrValidation)
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be a positive number", ErrValidation)
	}
	exists, err := s.Repo.CategoryExists(ctx, in.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: category %d does not exist", ErrValidation, in.CategoryID)
	}
	return nil
}

// upload relays the image to the object store. The DB write referencing the
// result only happens after a successful upload.
func (s *ProductService) upload(ctx context.Context, img *ImagePayload) (string, error) {
	if s.Store == nil {
		return "", fmt.Errorf("%w: object store is not configured", ErrUpload)
	}
	url, err := s.Store.Upload(ctx, img.Filename, img.ContentType, img.Reader, img.Size)
	if err != nil {
		logging.FromContext(ctx).Error("image upload error", "error", err)
		return "", ErrUpload
	}
	return url, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput, ownerID uint) (*models.ProductView, error) {
	l := logging.FromContext(ctx).With("svc", "product.create")

	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	var imageURL string
	if in.Image != nil {
		url, err := s.upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	prod := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		UserID:      ownerID,
		ImageURL:    imageURL,
	}
	if err := s.Repo.CreateProduct(ctx, &prod); err != nil {
		return nil, err
	}

	s.index(ctx, &prod)
	s.publish(ctx, ownerID, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"userID":    ownerID,
		"name":      prod.Name,
	})

	l.Info("create_product_success", "productID", prod.ID)
	return s.Repo.GetProduct(ctx, prod.ID)
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.ProductView, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *ProductService) List(ctx context.Context, offset, limit int) (int64, []models.ProductView, error) {
	return s.Repo.GetProducts(ctx, offset, limit)
}

func (s *ProductService) ListByCategory(ctx context.Context, categoryID uint) ([]models.ProductView, error) {
	return s.Repo.GetProductsByCategory(ctx, categoryID)
}

// Update requires ownership, same as delete. A replacement image overwrites
// image_url; the previous object stays in the store.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput, requesterID uint) (*models.ProductView, error) {
	l := logging.FromContext(ctx).With("svc", "product.update")

	prod, err := s.Repo.GetProductRow(ctx, id)
	if err != nil {
		return nil, err
	}
	if prod.UserID != requesterID {
		return nil, fmt.Errorf("%w: you can only update your own products", ErrForbidden)
	}

	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	if in.Image != nil {
		url, err := s.upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		prod.ImageURL = url
	}

	prod.Name = in.Name
	prod.Description = in.Description
	prod.Price = in.Price
	prod.CategoryID = in.CategoryID

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.index(ctx, prod)
	s.publish(ctx, requesterID, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"userID":    requesterID,
		"name":      prod.Name,
	})

	l.Info("update_product_success", "productID", prod.ID)
	return s.Repo.GetProduct(ctx, prod.ID)
}

func (s *ProductService) Delete(ctx context.Context, id, requesterID uint) error {
	l := logging.FromContext(ctx).With("svc", "product.delete")

	prod, err := s.Repo.GetProductRow(ctx, id)
	if err != nil {
		return err
	}
	if prod.UserID != requesterID {
		return fmt.Errorf("%w: you can only delete your own products", ErrForbidden)
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			l.Error("search index delete error", "productID", id, "error", err)
		}
	}
	s.publish(ctx, requesterID, map[string]any{
		"type":      "product_deleted",
		"productID": id,
		"userID":    requesterID,
	})

	l.Info("delete_product_success", "productID", id)
	return nil
}

func (s *ProductService) index(ctx context.Context, prod *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, prod); err != nil {
		logging.FromContext(ctx).Error("search index error", "productID", prod.ID, "error", err)
	}
}

func (s *ProductService) publish(ctx context.Context, userID uint, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.PublishEvent(pubCtx, "product_events", fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("event publish error", "topic", "product_events", "error", err)
	}
}
