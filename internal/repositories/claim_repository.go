package repositories

import (
	"errors"
	"time"

	"github.com/tahsinn/campus-found/backend/internal/apperr"
	"github.com/tahsinn/campus-found/backend/internal/models"
	"gorm.io/gorm"
)

// ClaimFilter narrows List results. Zero values mean "any".
type ClaimFilter struct {
	ListingID  uint
	ClaimantID uint
	Status     models.ClaimStatus
}

// ClaimRepository defines the interface for claim data operations.
// The mutating methods are atomic units: guard checks, the write and the
// triggered notification commit together or not at all.
type ClaimRepository interface {
	CreatePending(claim *models.Claim, notif *models.Notification) error
	GetByID(id uint) (*models.Claim, error)
	List(filter ClaimFilter) ([]models.Claim, error)
	ListForParticipant(userID uint) ([]models.Claim, error)
	Review(claim *models.Claim, resolveListing bool, notif *models.Notification) error
}

// PostgresClaimRepository implements ClaimRepository for PostgreSQL
type PostgresClaimRepository struct {
	db *gorm.DB
}

// NewPostgresClaimRepository creates a new PostgresClaimRepository
func NewPostgresClaimRepository(db *gorm.DB) *PostgresClaimRepository {
	return &PostgresClaimRepository{db: db}
}

// CreatePending inserts a pending claim after checking the per-listing
// uniqueness invariants, all inside one transaction. The pre-checks
// exist to produce precise conflict reasons; the partial unique indexes
// (see AutoMigrate) are the canonical conflict signal when two
// submissions race past the checks, so a duplicated-key error is mapped
// to the same Conflict outcome instead of a second row.
func (r *PostgresClaimRepository) CreatePending(claim *models.Claim, notif *models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing []models.Claim
		if err := tx.Where("listing_id = ? AND status IN ?", claim.ListingID,
			[]models.ClaimStatus{models.ClaimPending, models.ClaimApproved}).
			Find(&existing).Error; err != nil {
			return err
		}
		for _, c := range existing {
			switch {
			case c.Status == models.ClaimApproved:
				return apperr.Conflict("This item has already been claimed and resolved")
			case c.ClaimantID == claim.ClaimantID:
				return apperr.Conflict("You already have a pending claim for this listing")
			default:
				return apperr.Conflict("Another claim for this listing is already under review")
			}
		}

		claim.Status = models.ClaimPending
		if err := tx.Create(claim).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("Another claim for this listing is already under review")
			}
			return err
		}

		notif.RelatedClaimID = &claim.ID
		return tx.Create(notif).Error
	})
}

// GetByID retrieves a claim by ID
func (r *PostgresClaimRepository) GetByID(id uint) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &claim, nil
}

// List retrieves claims matching the filter, newest first
func (r *PostgresClaimRepository) List(filter ClaimFilter) ([]models.Claim, error) {
	q := r.db.Model(&models.Claim{})
	if filter.ListingID != 0 {
		q = q.Where("listing_id = ?", filter.ListingID)
	}
	if filter.ClaimantID != 0 {
		q = q.Where("claimant_id = ?", filter.ClaimantID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var claims []models.Claim
	if err := q.Order("created_at DESC").Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

// ListForParticipant retrieves claims where the user is the claimant or
// owns the listing the claim was filed against. Used by conversation
// derivation.
func (r *PostgresClaimRepository) ListForParticipant(userID uint) ([]models.Claim, error) {
	var claims []models.Claim
	err := r.db.
		Joins("JOIN listings ON listings.id = claims.listing_id").
		Where("claims.claimant_id = ? OR listings.owner_id = ?", userID, userID).
		Order("claims.created_at ASC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Review applies a terminal transition to a pending claim. The guard is
// a conditional update on status = pending: zero rows affected means
// the claim was already reviewed (or never existed), never a silent
// second review. The claimant notification and, on approval, the
// listing resolution commit in the same transaction.
func (r *PostgresClaimRepository) Review(claim *models.Claim, resolveListing bool, notif *models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":           claim.Status,
			"reviewer_id":      claim.ReviewerID,
			"rejection_reason": claim.RejectionReason,
			"handover_notes":   claim.HandoverNotes,
			"handover_at":      claim.HandoverAt,
			"updated_at":       time.Now(),
		}
		res := tx.Model(&models.Claim{}).
			Where("id = ? AND status = ?", claim.ID, models.ClaimPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Claim{}).Where("id = ?", claim.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return apperr.ErrNotFound
			}
			return apperr.Conflict("This claim has already been reviewed")
		}

		if resolveListing {
			if err := tx.Model(&models.Listing{}).
				Where("id = ?", claim.ListingID).
				Update("status", models.ListingResolved).Error; err != nil {
				return err
			}
		}

		notif.RelatedClaimID = &claim.ID
		return tx.Create(notif).Error
	})
}
