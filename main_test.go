/* main_test.go
 * Contains unit tests for main.go functions
 * Authors: Zachary Bower
 */

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEnvOrDefault_Set tests reading a variable that is set
func TestEnvOrDefault_Set(t *testing.T) {
	t.Setenv("TYPERACE_TEST_VAR", ":9090")

	result := envOrDefault("TYPERACE_TEST_VAR", ":8080")

	assert.Equal(t, ":9090", result)
}

// TestEnvOrDefault_Unset tests falling back when the variable is unset
func TestEnvOrDefault_Unset(t *testing.T) {
	result := envOrDefault("TYPERACE_UNSET_VAR", ":8080")

	assert.Equal(t, ":8080", result)
}

// TestEnvOrDefault_Empty tests falling back when the variable is set but empty
func TestEnvOrDefault_Empty(t *testing.T) {
	t.Setenv("TYPERACE_TEST_VAR", "")

	result := envOrDefault("TYPERACE_TEST_VAR", ":8080")

	assert.Equal(t, ":8080", result)
}
