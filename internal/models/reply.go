package models

import "time"

// Reply is one broadcaster reply recorded against an intercepted
// complaint.
type Reply struct {
	ID          int64     `json:"id"`
	BBCRef      string    `json:"bbc_ref_number"`
	InterceptID string    `json:"intercept_id"`
	Body        string    `json:"bbc_reply"`
	CreatedAt   time.Time `json:"timestamp"`
}
