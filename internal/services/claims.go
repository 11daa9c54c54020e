package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tahsinn/campus-found/backend/internal/apperr"
	"github.com/tahsinn/campus-found/backend/internal/models"
	"github.com/tahsinn/campus-found/backend/internal/repositories"
	"github.com/tahsinn/campus-found/backend/internal/syncbus"
)

// Pusher delivers a best-effort push copy of a notification. A push
// failure never fails the request that triggered it.
type Pusher interface {
	Push(ctx context.Context, userID uint, title, body string) error
}

// ClaimService orchestrates claim submission and adjudication: it
// validates a transition request, applies it to the claim store and
// triggers the notification side effects. All cross-entity invariants
// are enforced by the store inside one transaction per operation.
type ClaimService struct {
	claims   repositories.ClaimRepository
	listings repositories.ListingRepository
	users    repositories.UserRepository
	bus      *syncbus.Bus
	push     Pusher
}

// NewClaimService creates a new ClaimService. push may be nil.
func NewClaimService(
	claims repositories.ClaimRepository,
	listings repositories.ListingRepository,
	users repositories.UserRepository,
	bus *syncbus.Bus,
	push Pusher,
) *ClaimService {
	return &ClaimService{claims: claims, listings: listings, users: users, bus: bus, push: push}
}

// Submit files a pending claim for the actor against a found listing.
// Exactly one of two racing submissions wins; the loser gets a
// Conflict with the precise reason, never a second row.
func (s *ClaimService) Submit(ctx context.Context, actor models.Actor, req models.SubmitClaimRequest) (*models.ExpandedClaim, error) {
	if len(strings.TrimSpace(req.ProofDescription)) < 20 {
		return nil, fmt.Errorf("%w: proof description must be at least 20 characters", apperr.ErrInvalidInput)
	}

	listing, err := s.listings.GetByID(req.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.Type != models.ListingFound {
		return nil, fmt.Errorf("%w: only found listings are claimable", apperr.ErrInvalidState)
	}
	if listing.OwnerID == actor.ID {
		return nil, fmt.Errorf("%w: cannot claim your own listing", apperr.ErrForbidden)
	}

	claim := &models.Claim{
		ListingID:        listing.ID,
		ClaimantID:       actor.ID,
		Status:           models.ClaimPending,
		ProofDescription: strings.TrimSpace(req.ProofDescription),
	}
	notif := &models.Notification{
		UserID:           listing.OwnerID,
		Type:             models.NotifClaimSubmitted,
		Title:            "New ownership claim",
		Message:          fmt.Sprintf("Someone submitted a claim for %q", listing.Title),
		RelatedListingID: &listing.ID,
	}

	if err := s.claims.CreatePending(claim, notif); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, "claim", claim.ID, models.ChangeCreated)
	s.deliverPush(ctx, notif)

	return s.expand(claim), nil
}

// Review applies a terminal decision to a pending claim. Only elevated
// actors may review, and never their own claim or a claim against
// their own listing.
func (s *ClaimService) Review(ctx context.Context, actor models.Actor, claimID uint, req models.ReviewClaimRequest) (*models.ExpandedClaim, error) {
	if !actor.Elevated() {
		return nil, fmt.Errorf("%w: reviewing claims requires staff privileges", apperr.ErrForbidden)
	}

	claim, err := s.claims.GetByID(claimID)
	if err != nil {
		return nil, err
	}
	if claim.Status.Terminal() {
		return nil, apperr.Conflict("This claim has already been reviewed")
	}
	if claim.ClaimantID == actor.ID {
		return nil, fmt.Errorf("%w: cannot review your own claim", apperr.ErrForbidden)
	}

	listing, err := s.listings.GetByID(claim.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID == actor.ID {
		return nil, fmt.Errorf("%w: cannot review a claim against your own listing", apperr.ErrForbidden)
	}

	decision, err := decisionFrom(req)
	if err != nil {
		return nil, err
	}

	reviewerID := actor.ID
	claim.ReviewerID = &reviewerID
	notif := &models.Notification{
		UserID:           claim.ClaimantID,
		RelatedListingID: &listing.ID,
	}

	approved := decision.Approved != nil
	if approved {
		claim.Status = models.ClaimApproved
		claim.HandoverAt = &decision.Approved.HandoverAt
		claim.HandoverNotes = decision.Approved.HandoverNotes
		claim.RejectionReason = ""
		notif.Type = models.NotifClaimApproved
		notif.Title = "Claim approved"
		notif.Message = fmt.Sprintf("Your claim for %q has been approved", listing.Title)
	} else {
		claim.Status = models.ClaimRejected
		claim.RejectionReason = decision.Rejected.Reason
		claim.HandoverAt = nil
		claim.HandoverNotes = ""
		notif.Type = models.NotifClaimRejected
		notif.Title = "Claim rejected"
		notif.Message = fmt.Sprintf("Your claim for %q was rejected: %s", listing.Title, decision.Rejected.Reason)
	}

	if err := s.claims.Review(claim, approved, notif); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, "claim", claim.ID, models.ChangeUpdated)
	if approved {
		listing.Status = models.ListingResolved
		s.bus.Publish(ctx, "listing", listing.ID, models.ChangeUpdated)
	}
	s.deliverPush(ctx, notif)

	return s.expand(claim), nil
}

// List returns claims matching the filter. Non-privileged actors see
// only their own claims regardless of the requested filter.
func (s *ClaimService) List(ctx context.Context, actor models.Actor, filter repositories.ClaimFilter) ([]models.ExpandedClaim, error) {
	if !actor.Elevated() {
		filter.ClaimantID = actor.ID
	}
	claims, err := s.claims.List(filter)
	if err != nil {
		return nil, err
	}
	return s.expandAll(claims), nil
}

// Get returns one expanded claim, scoped like List.
func (s *ClaimService) Get(ctx context.Context, actor models.Actor, id uint) (*models.ExpandedClaim, error) {
	claim, err := s.claims.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.Elevated() && claim.ClaimantID != actor.ID {
		return nil, fmt.Errorf("%w: not your claim", apperr.ErrForbidden)
	}
	return s.expand(claim), nil
}

// decisionFrom maps the review payload to a tagged decision. An empty
// rejection reason becomes the literal "Rejected" rather than an empty
// string, matching long-standing reviewer tooling behavior.
func decisionFrom(req models.ReviewClaimRequest) (models.Decision, error) {
	switch req.Status {
	case models.ClaimApproved:
		handoverAt := time.Now()
		if req.HandoverAt != nil {
			handoverAt = *req.HandoverAt
		}
		return models.Decision{Approved: &models.ApprovedDecision{
			HandoverAt:    handoverAt,
			HandoverNotes: strings.TrimSpace(req.HandoverNotes),
		}}, nil
	case models.ClaimRejected:
		reason := strings.TrimSpace(req.RejectionReason)
		if reason == "" {
			reason = "Rejected"
		}
		return models.Decision{Rejected: &models.RejectedDecision{Reason: reason}}, nil
	default:
		return models.Decision{}, fmt.Errorf("%w: status must be approved or rejected", apperr.ErrInvalidInput)
	}
}

func (s *ClaimService) deliverPush(ctx context.Context, notif *models.Notification) {
	if s.push == nil {
		return
	}
	if err := s.push.Push(ctx, notif.UserID, notif.Title, notif.Message); err != nil {
		log.Printf("claims: push to user %d: %v", notif.UserID, err)
	}
}

func (s *ClaimService) expand(claim *models.Claim) *models.ExpandedClaim {
	expanded := s.expandAll([]models.Claim{*claim})
	return &expanded[0]
}

// expandAll resolves listing/claimant/reviewer views in batch. A
// participant without a resolvable profile is omitted, not an error.
func (s *ClaimService) expandAll(claims []models.Claim) []models.ExpandedClaim {
	listingIDs := make([]uint, 0, len(claims))
	userIDs := make([]uint, 0, len(claims)*2)
	for _, c := range claims {
		listingIDs = append(listingIDs, c.ListingID)
		userIDs = append(userIDs, c.ClaimantID)
		if c.ReviewerID != nil {
			userIDs = append(userIDs, *c.ReviewerID)
		}
	}

	listings, err := s.listings.GetByIDs(listingIDs)
	if err != nil {
		log.Printf("claims: expand listings: %v", err)
		listings = map[uint]models.Listing{}
	}
	users, err := s.users.GetUsersByIDs(userIDs)
	if err != nil {
		log.Printf("claims: expand users: %v", err)
		users = map[uint]models.User{}
	}

	expanded := make([]models.ExpandedClaim, len(claims))
	for i, c := range claims {
		expanded[i] = models.ExpandedClaim{Claim: c}
		if l, ok := listings[c.ListingID]; ok {
			listing := l
			expanded[i].Listing = &listing
		}
		if u, ok := users[c.ClaimantID]; ok {
			compact := u.ToCompact()
			expanded[i].Claimant = &compact
		}
		if c.ReviewerID != nil {
			if u, ok := users[*c.ReviewerID]; ok {
				compact := u.ToCompact()
				expanded[i].Reviewer = &compact
			}
		}
	}
	return expanded
}
