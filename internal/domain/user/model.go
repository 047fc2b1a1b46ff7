package user

import "time"

// Plan is the named quota class determining per-agent concurrency ceilings.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
)

// Valid reports whether p is a known plan tier.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanBusiness:
		return true
	}
	return false
}

// User is a dashboard account. Referenced by the admission core only for its
// plan tier.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Plan         Plan
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
