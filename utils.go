/* utils.go
 * Utility functions used across the application
 * Authors: Zachary Bower
 */

package main

import "os"

// envOrDefault reads an environment variable, falling back to def when unset or empty
// Preconditions: Receives the variable name and a default value
// Postconditions: Returns the variable's value, or def
func envOrDefault(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
