package chat

import "time"

// Session groups the turns sharing one session key.
type Session struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
}
