package cart

import (
	"context"
	"errors"

	"github.com/hedgerow/hedgerow-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBStore keeps blobs in the cart_blobs table, one row per storage key.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row models.CartBlob
	err := s.db.WithContext(ctx).
		Where("storage_key = ?", key).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return []byte(row.Payload), nil
}

func (s *DBStore) Put(ctx context.Context, key string, blob []byte) error {
	row := models.CartBlob{
		StorageKey: key,
		Payload:    string(blob),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "storage_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
}
