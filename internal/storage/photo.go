// Package storage keeps product photos apart from product rows so listings never load them.
package storage

import (
	"context"
	"errors"
	"fmt"

	"ecommerce_backend/internal/config"
	"ecommerce_backend/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPhotoNotFound is returned when a product has no stored photo
var ErrPhotoNotFound = errors.New("photo not found")

// Photo is a stored image
type Photo struct {
	Data        []byte
	ContentType string
}

// PhotoStore saves, loads and removes product photos
type PhotoStore interface {
	Put(ctx context.Context, productID uint, photo Photo) error
	Get(ctx context.Context, productID uint) (*Photo, error)
	Delete(ctx context.Context, productID uint) error
}

// New picks the photo disk named by PHOTO_DISK
func New(ctx context.Context, cfg *config.Config, db *gorm.DB) (PhotoStore, error) {
	switch cfg.PhotoDisk {
	case "", "database":
		return NewDBStore(db), nil
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("storage: unknown photo disk %q", cfg.PhotoDisk)
	}
}

// DBStore keeps photos in the product_photos table
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Put(ctx context.Context, productID uint, photo Photo) error {
	row := domain.ProductPhoto{ProductID: productID, Data: photo.Data, ContentType: photo.ContentType}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "content_type"}),
	}).Create(&row).Error
}

func (s *DBStore) Get(ctx context.Context, productID uint) (*Photo, error) {
	var row domain.ProductPhoto
	err := s.db.WithContext(ctx).First(&row, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Photo{Data: row.Data, ContentType: row.ContentType}, nil
}

func (s *DBStore) Delete(ctx context.Context, productID uint) error {
	return s.db.WithContext(ctx).Delete(&domain.ProductPhoto{}, "product_id = ?", productID).Error
}
