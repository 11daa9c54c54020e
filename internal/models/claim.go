package models

import "time"

type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)

// Terminal reports whether the status can never change again.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimApproved || s == ClaimRejected
}

// Claim is a user's assertion of ownership over a found-item listing,
// subject to staff review. Lifecycle: pending -> approved | rejected,
// both terminal. Uniqueness per listing (one pending, one approved) is
// enforced by partial unique indexes, see repositories.AutoMigrate.
type Claim struct {
	ID               uint        `json:"id" gorm:"primaryKey"`
	ListingID        uint        `json:"listing_id" gorm:"index"`
	ClaimantID       uint        `json:"claimant_id" gorm:"index"`
	ReviewerID       *uint       `json:"reviewer_id,omitempty"`
	Status           ClaimStatus `json:"status" gorm:"size:20;default:'pending';index"`
	ProofDescription string      `json:"proof_description"`
	RejectionReason  string      `json:"rejection_reason,omitempty"`
	HandoverNotes    string      `json:"handover_notes,omitempty"`
	HandoverAt       *time.Time  `json:"handover_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Decision is the outcome of a review. Exactly one of Approved or
// Rejected is set; the fields that travel with each outcome differ, so
// they are kept on separate variants instead of one nullable blob.
type Decision struct {
	Approved *ApprovedDecision
	Rejected *RejectedDecision
}

type ApprovedDecision struct {
	HandoverAt    time.Time
	HandoverNotes string
}

type RejectedDecision struct {
	Reason string
}

// ExpandedClaim carries the claim plus resolved participant views. A
// participant whose profile no longer exists is simply omitted.
type ExpandedClaim struct {
	Claim
	Listing  *Listing     `json:"listing,omitempty"`
	Claimant *UserCompact `json:"claimant,omitempty"`
	Reviewer *UserCompact `json:"reviewer,omitempty"`
}

type SubmitClaimRequest struct {
	ListingID        uint   `json:"listing_id" validate:"required"`
	ProofDescription string `json:"proof_description" validate:"required,min=20"`
}

type ReviewClaimRequest struct {
	Status          ClaimStatus `json:"status" validate:"required,oneof=approved rejected"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
	HandoverNotes   string      `json:"handover_notes,omitempty"`
	HandoverAt      *time.Time  `json:"handover_at,omitempty"`
}
