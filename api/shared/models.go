/* models.go
 * This file contains the structs and helper functions that are shared between sub packages
 * Authors: Zachary Bower
 */

package shared

import "strings"

// User is the authenticated caller identity supplied by the identity provider.
// The core treats UserID as an opaque stable identifier.
type User struct {
	UserID   string
	Username string
}

// DisplayName resolves the name shown for a user on leaderboards and match
// views. Falls back to the email local-part, then "Anonymous". Kept here so
// every projection renders the same name for the same profile.
func DisplayName(name string, email string) string {
	if name != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "Anonymous"
}
