// Package match decides whether a message satisfies a parsing template's
// condition set.
package match

import (
	"strings"

	"github.com/smsrates/pricefeed/internal/mailbox"
	"github.com/smsrates/pricefeed/internal/model"
)

// Matches applies the template's conditions to a message. Categories present
// in the condition set must all pass (AND); within a category any listed
// value may match (OR); absent categories are not enforced. An empty
// condition set therefore matches every message — a legal configuration, but
// one the template loader flags, since it captures the whole mailbox.
func Matches(msg mailbox.Message, cond model.MatchConditions) bool {
	if len(cond.From) > 0 && !containsAny(msg.From, cond.From) {
		return false
	}
	if len(cond.To) > 0 && !containsAny(msg.To, cond.To) {
		return false
	}
	if len(cond.Cc) > 0 && !containsAny(msg.Cc, cond.Cc) {
		return false
	}
	if len(cond.SubjectKeywords) > 0 && !containsAny(msg.Subject, cond.SubjectKeywords) {
		return false
	}
	if len(cond.FilenameKeywords) > 0 && !anyFilenameMatches(msg.Attachments, cond.FilenameKeywords) {
		return false
	}
	return true
}

func containsAny(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(h, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func anyFilenameMatches(attachments []mailbox.Attachment, keywords []string) bool {
	for _, a := range attachments {
		if containsAny(a.Filename, keywords) {
			return true
		}
	}
	return false
}
