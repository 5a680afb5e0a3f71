package domain

type ActivityAction string

const (
	ActionOrderCreated       ActivityAction = "ORDER_CREATED"
	ActionOrderStatusChanged ActivityAction = "ORDER_STATUS_CHANGED"
	ActionOrderCancelled     ActivityAction = "ORDER_CANCELLED"
)

type ActivityEntry struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	Role      Role           `json:"role"`
	Action    ActivityAction `json:"action"`
	Details   string         `json:"details"`
	TargetID  string         `json:"targetId,omitempty"`
}
