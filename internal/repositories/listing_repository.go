package repositories

import (
	"errors"

	"github.com/tahsinn/campus-found/backend/internal/apperr"
	"github.com/tahsinn/campus-found/backend/internal/models"
	"gorm.io/gorm"
)

// ListingRepository defines the read-side interface for listings. The
// wider listing CRUD surface is owned elsewhere; claims only need
// lookups to validate claimability and populate notification text.
type ListingRepository interface {
	GetByID(id uint) (*models.Listing, error)
	GetByIDs(ids []uint) (map[uint]models.Listing, error)
}

// PostgresListingRepository implements ListingRepository for PostgreSQL
type PostgresListingRepository struct {
	db *gorm.DB
}

// NewPostgresListingRepository creates a new PostgresListingRepository
func NewPostgresListingRepository(db *gorm.DB) *PostgresListingRepository {
	return &PostgresListingRepository{db: db}
}

// GetByID retrieves a listing by ID
func (r *PostgresListingRepository) GetByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// GetByIDs retrieves listings keyed by ID for batch expansion
func (r *PostgresListingRepository) GetByIDs(ids []uint) (map[uint]models.Listing, error) {
	result := make(map[uint]models.Listing, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var listings []models.Listing
	if err := r.db.Where("id IN ?", ids).Find(&listings).Error; err != nil {
		return nil, err
	}
	for _, l := range listings {
		result[l.ID] = l
	}
	return result, nil
}
