package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smsrates/pricefeed/internal/mailbox"
	"github.com/smsrates/pricefeed/internal/model"
)

func testMessage() mailbox.Message {
	return mailbox.Message{
		From:    "Offers <offers@acme.com>",
		To:      "pricing@ourco.example",
		Cc:      "manager@ourco.example",
		Subject: "New price list",
		Attachments: []mailbox.Attachment{
			{Filename: "ACME_Prices_June.csv"},
		},
	}
}

func TestMatches_NoConditionsMatchesEverything(t *testing.T) {
	assert.True(t, Matches(testMessage(), model.MatchConditions{}))
	assert.True(t, Matches(mailbox.Message{}, model.MatchConditions{}))
}

func TestMatches_FromSubstringCaseInsensitive(t *testing.T) {
	msg := testMessage()

	assert.True(t, Matches(msg, model.MatchConditions{From: []string{"OFFERS@ACME.COM"}}))
	assert.True(t, Matches(msg, model.MatchConditions{From: []string{"acme.com"}}))
	assert.False(t, Matches(msg, model.MatchConditions{From: []string{"other.com"}}))
}

func TestMatches_OrWithinCategory(t *testing.T) {
	msg := testMessage()

	cond := model.MatchConditions{SubjectKeywords: []string{"rate", "price"}}
	assert.True(t, Matches(msg, cond), "one matching keyword is enough")

	cond = model.MatchConditions{SubjectKeywords: []string{"rate", "offer"}}
	assert.False(t, Matches(msg, cond))
}

func TestMatches_AndAcrossCategories(t *testing.T) {
	msg := testMessage()

	cond := model.MatchConditions{
		From:            []string{"offers@acme.com"},
		SubjectKeywords: []string{"price"},
	}
	assert.True(t, Matches(msg, cond))

	cond.To = []string{"someoneelse@ourco.example"}
	assert.False(t, Matches(msg, cond), "every specified category must pass")
}

func TestMatches_FilenameKeywords(t *testing.T) {
	msg := testMessage()

	assert.True(t, Matches(msg, model.MatchConditions{FilenameKeywords: []string{"prices"}}))
	assert.False(t, Matches(msg, model.MatchConditions{FilenameKeywords: []string{"invoice"}}))

	msg.Attachments = nil
	assert.False(t, Matches(msg, model.MatchConditions{FilenameKeywords: []string{"prices"}}),
		"filename condition cannot pass without attachments")
}

// Adding a failing category flips match to no-match; removing a category
// never turns a match into a no-match.
func TestMatches_Monotonicity(t *testing.T) {
	msg := testMessage()
	cond := model.MatchConditions{From: []string{"acme.com"}}
	assert.True(t, Matches(msg, cond))

	widened := cond
	widened.SubjectKeywords = []string{"nothere"}
	assert.False(t, Matches(msg, widened))

	narrowed := cond
	narrowed.From = nil
	assert.True(t, Matches(msg, narrowed))
}
