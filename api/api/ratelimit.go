/* ratelimit.go
 * Contains the per-caller limiter for match creation. Creating a match writes two
 * documents and parks an open invite code, so a misbehaving client looping on create
 * could flood the matches collection with waiting matches
 * Authors: Zachary Bower
 */

package api

import (
	"sync"

	"golang.org/x/time/rate"
)

const (
	// One created match every 10 seconds sustained, with a small burst for retries
	createInterval = 10
	createBurst    = 3
)

type createLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newCreateLimiter() *createLimiter {
	return &createLimiter{limiters: make(map[string]*rate.Limiter)}
}

// allow reports whether the caller may create a match right now
func (c *createLimiter) allow(callerID string) bool {
	c.mu.Lock()
	l, ok := c.limiters[callerID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(1.0/createInterval), createBurst)
		c.limiters[callerID] = l
	}
	c.mu.Unlock()
	return l.Allow()
}
