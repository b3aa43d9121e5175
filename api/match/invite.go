/* invite.go
 * Contains invite code generation. Codes are 6 uppercase alphanumerics, unique among
 * waiting matches: generation retries until no waiting match holds the candidate, so
 * two open matches can never share a code
 * Authors: Zachary Bower
 */

package match

import (
	"crypto/rand"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength   = 6
	inviteCodeAttempts = 10
)

// generateInviteCode produces one random candidate code
func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(buf), nil
}

// newInviteCode returns a code no waiting match currently holds. With 36^6 possible
// codes and few concurrent waiting matches a retry is nearly never needed, but the
// check closes the collision window a bare random draw leaves open
func (e *Engine) newInviteCode() (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := generateInviteCode()
		if err != nil {
			return "", err
		}
		_, err = e.Store.FindWaitingMatchByCode(code)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		// Code in use by a waiting match; draw again
	}
	return "", fmt.Errorf("could not generate a unique invite code after %d attempts", inviteCodeAttempts)
}
