package entities

// HealthStatus classifies how overdue an entity's next action is. It is
// derived on demand from entity state and a caller-supplied reference date,
// never persisted.
type HealthStatus string

const (
	StatusOnTrack HealthStatus = "on_track"
	StatusDelayed HealthStatus = "delayed"
	StatusOverdue HealthStatus = "overdue"
)

// ReviewReason explains why an entity is suggested for review.
type ReviewReason string

const (
	// ReviewAvoided flags entities whose follow-up keeps being postponed.
	ReviewAvoided ReviewReason = "avoided"
	// ReviewStale flags entities not reviewed or updated for a long time.
	ReviewStale ReviewReason = "stale"
	// ReviewIncomplete flags entities with barely any recorded context.
	ReviewIncomplete ReviewReason = "incomplete"
)

// Suggestion pairs an entity with the reason it deserves attention.
type Suggestion struct {
	Entity *Entity      `json:"entity"`
	Reason ReviewReason `json:"reason"`
}
