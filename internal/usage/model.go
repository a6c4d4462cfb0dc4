// Package usage enforces the per-caller daily analysis quota.
package usage

import (
	"errors"
	"time"
)

// ErrLimitReached signals that the caller has used up today's analyses.
var ErrLimitReached = errors.New("daily analysis limit reached")

// Quota is the current allowance snapshot for one caller.
type Quota struct {
	Plan     string    `json:"plan"`
	Limit    int       `json:"limit"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}

// Remaining never reports below zero.
func (q Quota) Remaining() int {
	r := q.Limit - q.Used
	if r < 0 {
		return 0
	}
	return r
}
