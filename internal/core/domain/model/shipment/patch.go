package shipment

import (
	"strings"
	"time"
)

// Patch is the field-level update applied to a shipment in a single
// updateStatus request. Every field is optional; nil (or empty slice) means
// "leave unchanged". Evidence lists accumulate on the aggregate, they never
// replace what was stored before.
type Patch struct {
	// Status is the requested status. Nil means a metadata-only update: the
	// shipment keeps its current status but still records a history entry.
	Status *Status

	// Location overwrites the last known position.
	Location *string

	// ProofImages are proof-of-delivery photo references to append.
	ProofImages []string

	// Signature overwrites the customer signature reference.
	Signature *string

	// Note overwrites the delivery note.
	Note *string

	// EstimatedDelivery overwrites the delivery ETA.
	EstimatedDelivery *time.Time

	// FailureReason overwrites the delivery failure reason. Entering
	// delivery_failed requires a non-blank reason in the same request.
	FailureReason *string

	// FailureProofs are failed-attempt evidence references to append.
	FailureProofs []string
}

// HasProofEvidence reports whether the patch itself carries proof-of-delivery
// evidence (at least one image or a non-blank signature).
func (p Patch) HasProofEvidence() bool {
	if len(p.ProofImages) > 0 {
		return true
	}
	return p.Signature != nil && strings.TrimSpace(*p.Signature) != ""
}

// HasFailureReason reports whether the patch carries a non-blank failure reason.
func (p Patch) HasFailureReason() bool {
	return p.FailureReason != nil && strings.TrimSpace(*p.FailureReason) != ""
}

// HasProofUpload reports whether the patch uploads any evidence at all
// (delivery proofs, signature, or failed-attempt proofs). Used for audit
// action labeling.
func (p Patch) HasProofUpload() bool {
	return p.HasProofEvidence() || len(p.FailureProofs) > 0
}
