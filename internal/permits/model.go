package permits

import (
	"math"
	"time"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusSubmitted  Status = "submitted"
	StatusInProgress Status = "in-progress"
	StatusApproved   Status = "approved"
	StatusExpired    Status = "expired"
)

type Permit struct {
	ID           string     `json:"id" db:"id"`
	PermitNumber string     `json:"permit_number" db:"permit_number"`
	Title        string     `json:"title" db:"title"`
	ClientID     string     `json:"client_id" db:"client_id"`
	PermitType   string     `json:"permit_type" db:"permit_type"`
	Status       Status     `json:"status" db:"status"`
	Location     string     `json:"location" db:"location"`
	Description  *string    `json:"description,omitempty" db:"description"`
	Progress     int        `json:"progress" db:"progress"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// ChecklistItem is a priced, completable sub-task of a permit. A nil price
// means "not quoted yet" and counts as zero in sums.
type ChecklistItem struct {
	ID        string    `json:"id" db:"id"`
	PermitID  string    `json:"permit_id" db:"permit_id"`
	Title     string    `json:"title" db:"title"`
	Completed bool      `json:"completed" db:"completed"`
	Price     *float64  `json:"price,omitempty" db:"price"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PermitWithDetails bundles a permit with its checklist and derived costs.
type PermitWithDetails struct {
	Permit
	Items         []ChecklistItem `json:"items"`
	TotalCost     float64         `json:"total_cost"`
	CompletedCost float64         `json:"completed_cost"`
	BalanceDue    float64         `json:"balance_due"`
}

// ComputeProgress derives the completion percentage from checklist counts.
// An empty checklist reports zero rather than dividing by it.
func ComputeProgress(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// SummarizeCosts folds the checklist into total, completed and outstanding
// amounts. Unpriced items count as zero.
func SummarizeCosts(items []ChecklistItem) (total, completed, balance float64) {
	for _, item := range items {
		price := 0.0
		if item.Price != nil {
			price = *item.Price
		}
		total += price
		if item.Completed {
			completed += price
		}
	}
	return total, completed, total - completed
}

// ProgressOf recomputes the percentage for a checklist snapshot.
func ProgressOf(items []ChecklistItem) int {
	done := 0
	for _, item := range items {
		if item.Completed {
			done++
		}
	}
	return ComputeProgress(done, len(items))
}
