/* passage.go
 * Contains passage tokenization helpers used at match creation and in match views
 * Authors: Zachary Bower
 */

package logic

import (
	"strings"

	"github.com/go-andiamo/splitter"
)

// PassageWords splits a passage into its typed words. Uses splitter so quoted dialogue
// inside book passages stays intact as single tokens, same splitting the client races
// against
// Preconditions: Receives the passage text
// Postconditions: Returns the non-empty word tokens in order
func PassageWords(text string) []string {
	spaceSplitter, _ := splitter.NewSplitter(' ', splitter.DoubleQuotes)
	parts, err := spaceSplitter.Split(text)
	if err != nil {
		// Unbalanced quotes in a passage are not an input error; fall back to plain fields
		parts = strings.Fields(text)
	}

	var words []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			words = append(words, p)
		}
	}
	return words
}

// PassageWordCount returns the number of words a passage contains
func PassageWordCount(text string) int {
	return len(PassageWords(text))
}
