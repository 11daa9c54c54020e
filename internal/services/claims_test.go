package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tahsinn/campus-found/backend/internal/apperr"
	"github.com/tahsinn/campus-found/backend/internal/models"
	"github.com/tahsinn/campus-found/backend/internal/repositories"
	"github.com/tahsinn/campus-found/backend/internal/services"
	"github.com/tahsinn/campus-found/backend/internal/syncbus"
)

type claimFixture struct {
	claims   *MockClaimRepository
	listings *MockListingRepository
	users    *MockUserRepository
	svc      *services.ClaimService
}

func newClaimFixture() *claimFixture {
	f := &claimFixture{
		claims:   new(MockClaimRepository),
		listings: new(MockListingRepository),
		users:    new(MockUserRepository),
	}
	f.svc = services.NewClaimService(f.claims, f.listings, f.users, syncbus.NewBus(), nil)
	return f
}

// allowExpand satisfies the batch lookups that run after a successful
// mutation; individual tests override with richer data when they assert
// on the expanded shape.
func (f *claimFixture) allowExpand() {
	f.listings.On("GetByIDs", mock.Anything).Return(map[uint]models.Listing{}, nil).Maybe()
	f.users.On("GetUsersByIDs", mock.Anything).Return(map[uint]models.User{}, nil).Maybe()
}

func foundListing() *models.Listing {
	return &models.Listing{
		ID:      7,
		Type:    models.ListingFound,
		Status:  models.ListingOpen,
		OwnerID: 2,
		Title:   "Blue backpack",
	}
}

func TestSubmitCreatesPendingClaimAndNotifiesOwner(t *testing.T) {
	f := newClaimFixture()
	listing := foundListing()
	f.listings.On("GetByID", uint(7)).Return(listing, nil)
	f.allowExpand()

	var gotNotif *models.Notification
	f.claims.On("CreatePending", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			claim := args.Get(0).(*models.Claim)
			claim.ID = 42
			gotNotif = args.Get(1).(*models.Notification)
		}).
		Return(nil)

	actor := models.Actor{ID: 1, Role: models.RoleStudent}
	got, err := f.svc.Submit(context.Background(), actor, models.SubmitClaimRequest{
		ListingID:        7,
		ProofDescription: "  It has my initials stitched inside the front pocket.  ",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ClaimPending, got.Status)
	assert.Equal(t, uint(1), got.ClaimantID)
	assert.Equal(t, "It has my initials stitched inside the front pocket.", got.ProofDescription)

	require.NotNil(t, gotNotif)
	assert.Equal(t, uint(2), gotNotif.UserID)
	assert.Equal(t, models.NotifClaimSubmitted, gotNotif.Type)
	assert.Equal(t, "New ownership claim", gotNotif.Title)
	assert.Equal(t, `Someone submitted a claim for "Blue backpack"`, gotNotif.Message)
	f.claims.AssertExpectations(t)
}

func TestSubmitSucceedsWhenPushFails(t *testing.T) {
	f := newClaimFixture()
	push := new(MockPusher)
	f.svc = services.NewClaimService(f.claims, f.listings, f.users, syncbus.NewBus(), push)

	f.listings.On("GetByID", uint(7)).Return(foundListing(), nil)
	f.claims.On("CreatePending", mock.Anything, mock.Anything).Return(nil)
	f.allowExpand()
	push.On("Push", mock.Anything, uint(2), "New ownership claim", mock.Anything).
		Return(errors.New("fcm unreachable"))

	_, err := f.svc.Submit(context.Background(), models.Actor{ID: 1}, models.SubmitClaimRequest{
		ListingID:        7,
		ProofDescription: "It has my initials stitched inside the front pocket.",
	})
	require.NoError(t, err)
	push.AssertExpectations(t)
}

func TestSubmitRejectsShortProof(t *testing.T) {
	f := newClaimFixture()

	_, err := f.svc.Submit(context.Background(), models.Actor{ID: 1}, models.SubmitClaimRequest{
		ListingID:        7,
		ProofDescription: "it is mine",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	f.claims.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything)
}

func TestSubmitRejectsLostListing(t *testing.T) {
	f := newClaimFixture()
	listing := foundListing()
	listing.Type = models.ListingLost
	f.listings.On("GetByID", uint(7)).Return(listing, nil)

	_, err := f.svc.Submit(context.Background(), models.Actor{ID: 1}, models.SubmitClaimRequest{
		ListingID:        7,
		ProofDescription: "It has my initials stitched inside the front pocket.",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestSubmitRejectsOwnListing(t *testing.T) {
	f := newClaimFixture()
	f.listings.On("GetByID", uint(7)).Return(foundListing(), nil)

	_, err := f.svc.Submit(context.Background(), models.Actor{ID: 2}, models.SubmitClaimRequest{
		ListingID:        7,
		ProofDescription: "It has my initials stitched inside the front pocket.",
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	f.claims.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything)
}

func TestSubmitSurfacesDuplicateConflict(t *testing.T) {
	f := newClaimFixture()
	f.listings.On("GetByID", uint(7)).Return(foundListing(), nil)
	f.claims.On("CreatePending", mock.Anything, mock.Anything).
		Return(apperr.Conflict("You already have a pending claim for this listing"))

	_, err := f.svc.Submit(context.Background(), models.Actor{ID: 1}, models.SubmitClaimRequest{
		ListingID:        7,
		ProofDescription: "It has my initials stitched inside the front pocket.",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "You already have a pending claim for this listing", conflict.Reason)
}

func TestReviewRequiresElevatedRole(t *testing.T) {
	f := newClaimFixture()

	_, err := f.svc.Review(context.Background(), models.Actor{ID: 3, Role: models.RoleStudent}, 1, models.ReviewClaimRequest{
		Status: models.ClaimApproved,
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	f.claims.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestReviewOfTerminalClaimConflicts(t *testing.T) {
	f := newClaimFixture()
	f.claims.On("GetByID", uint(1)).Return(&models.Claim{
		ID: 1, ListingID: 7, ClaimantID: 1, Status: models.ClaimRejected,
	}, nil)

	_, err := f.svc.Review(context.Background(), models.Actor{ID: 3, Role: models.RoleStaff}, 1, models.ReviewClaimRequest{
		Status: models.ClaimApproved,
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	f.claims.AssertNotCalled(t, "Review", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewRejectsReviewerOwnClaim(t *testing.T) {
	f := newClaimFixture()
	f.claims.On("GetByID", uint(1)).Return(&models.Claim{
		ID: 1, ListingID: 7, ClaimantID: 3, Status: models.ClaimPending,
	}, nil)

	_, err := f.svc.Review(context.Background(), models.Actor{ID: 3, Role: models.RoleStaff}, 1, models.ReviewClaimRequest{
		Status: models.ClaimApproved,
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestReviewRejectsReviewerOwnListing(t *testing.T) {
	f := newClaimFixture()
	f.claims.On("GetByID", uint(1)).Return(&models.Claim{
		ID: 1, ListingID: 7, ClaimantID: 1, Status: models.ClaimPending,
	}, nil)
	listing := foundListing()
	listing.OwnerID = 3
	f.listings.On("GetByID", uint(7)).Return(listing, nil)

	_, err := f.svc.Review(context.Background(), models.Actor{ID: 3, Role: models.RoleStaff}, 1, models.ReviewClaimRequest{
		Status: models.ClaimApproved,
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestReviewApproveResolvesListingAndStampsHandover(t *testing.T) {
	f := newClaimFixture()
	f.claims.On("GetByID", uint(1)).Return(&models.Claim{
		ID: 1, ListingID: 7, ClaimantID: 1, Status: models.ClaimPending,
	}, nil)
	f.listings.On("GetByID", uint(7)).Return(foundListing(), nil)
	f.allowExpand()

	var gotClaim *models.Claim
	var gotNotif *models.Notification
	f.claims.On("Review", mock.Anything, true, mock.Anything).
		Run(func(args mock.Arguments) {
			gotClaim = args.Get(0).(*models.Claim)
			gotNotif = args.Get(2).(*models.Notification)
		}).
		Return(nil)

	handover := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	got, err := f.svc.Review(context.Background(), models.Actor{ID: 3, Role: models.RoleStaff}, 1, models.ReviewClaimRequest{
		Status:        models.ClaimApproved,
		HandoverAt:    &handover,
		HandoverNotes: "Front desk, bring your student card",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ClaimApproved, got.Status)
	require.NotNil(t, gotClaim.HandoverAt)
	assert.True(t, gotClaim.HandoverAt.Equal(handover))
	assert.Equal(t, "Front desk, bring your student card", gotClaim.HandoverNotes)
	require.NotNil(t, gotClaim.ReviewerID)
	assert.Equal(t, uint(3), *gotClaim.ReviewerID)

	require.NotNil(t, gotNotif)
	assert.Equal(t, uint(1), gotNotif.UserID)
	assert.Equal(t, models.NotifClaimApproved, gotNotif.Type)
	assert.Equal(t, `Your claim for "Blue backpack" has been approved`, gotNotif.Message)
}

func TestReviewApproveDefaultsHandoverToNow(t *testing.T) {
	f := newClaimFixture()
	f.claims.On("GetByID", uint(1)).Return(&models.Claim{
		ID: 1, ListingID: 7, ClaimantID: 1, Status: models.ClaimPending,
	}, nil)
	f.listings.On("GetByID", uint(7)).Return(foundListing(), nil)
	f.allowExpand()
	f.claims.On("Review", mock.Anything, true, mock.Anything).Return(nil)

	before := time.Now()
	got, err := f.svc.Review(context.Background(), models.Actor{ID: 3, Role: models.RoleStaff}, 1, models.ReviewClaimRequest{
		Status: models.ClaimApproved,
	})
	require.NoError(t, err)
	require.NotNil(t, got.HandoverAt)
	assert.False(t, got.HandoverAt.Before(before))
}

func TestReviewRejectCarriesReasonVerbatim(t *testing.T) {
	f := newClaimFixture()
	f.claims.On("GetByID", uint(1)).Return(&models.Claim{
		ID: 1, ListingID: 7, ClaimantID: 1, Status: models.ClaimPending,
	}, nil)
	f.listings.On("GetByID", uint(7)).Return(foundListing(), nil)
	f.allowExpand()

	var gotNotif *models.Notification
	f.claims.On("Review", mock.Anything, false, mock.Anything).
		Run(func(args mock.Arguments) { gotNotif = args.Get(2).(*models.Notification) }).
		Return(nil)

	got, err := f.svc.Review(context.Background(), models.Actor{ID: 3, Role: models.RoleStaff}, 1, models.ReviewClaimRequest{
		Status:          models.ClaimRejected,
		RejectionReason: "Proof does not match the item",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ClaimRejected, got.Status)
	assert.Equal(t, "Proof does not match the item", got.RejectionReason)
	assert.Nil(t, got.HandoverAt)

	require.NotNil(t, gotNotif)
	assert.Equal(t, models.NotifClaimRejected, gotNotif.Type)
	assert.Equal(t, `Your claim for "Blue backpack" was rejected: Proof does not match the item`, gotNotif.Message)
}

func TestReviewRejectEmptyReasonDefaults(t *testing.T) {
	f := newClaimFixture()
	f.claims.On("GetByID", uint(1)).Return(&models.Claim{
		ID: 1, ListingID: 7, ClaimantID: 1, Status: models.ClaimPending,
	}, nil)
	f.listings.On("GetByID", uint(7)).Return(foundListing(), nil)
	f.allowExpand()
	f.claims.On("Review", mock.Anything, false, mock.Anything).Return(nil)

	got, err := f.svc.Review(context.Background(), models.Actor{ID: 3, Role: models.RoleStaff}, 1, models.ReviewClaimRequest{
		Status:          models.ClaimRejected,
		RejectionReason: "   ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rejected", got.RejectionReason)
}

func TestListScopesStudentsToOwnClaims(t *testing.T) {
	f := newClaimFixture()
	f.allowExpand()
	f.claims.On("List", repositories.ClaimFilter{ClaimantID: 5}).Return([]models.Claim{}, nil)

	_, err := f.svc.List(context.Background(), models.Actor{ID: 5, Role: models.RoleStudent}, repositories.ClaimFilter{ClaimantID: 9})
	require.NoError(t, err)
	f.claims.AssertExpectations(t)
}

func TestGetForbidsOtherUsersClaim(t *testing.T) {
	f := newClaimFixture()
	f.claims.On("GetByID", uint(1)).Return(&models.Claim{
		ID: 1, ListingID: 7, ClaimantID: 2, Status: models.ClaimPending,
	}, nil)

	_, err := f.svc.Get(context.Background(), models.Actor{ID: 5, Role: models.RoleStudent}, 1)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
