/* shared_test.go
 * Contains unit tests for the shared helpers
 * Authors: Zachary Bower
 */

package shared

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		display  string
		email    string
		expected string
	}{
		{"display name wins", "Ada", "ada@example.com", "Ada"},
		{"email local part fallback", "", "alan.turing@example.com", "alan.turing"},
		{"email with no at sign", "", "nonsense", "Anonymous"},
		{"nothing available", "", "", "Anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayName(tt.display, tt.email))
		})
	}
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("match1")
			counter++
			km.Unlock("match1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestKeyedMutex_IndependentKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()

	km.Lock("match1")
	done := make(chan struct{})
	go func() {
		km.Lock("match2")
		km.Unlock("match2")
		close(done)
	}()
	<-done
	km.Unlock("match1")
}
