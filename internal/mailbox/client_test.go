package mailbox

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetry_SucceedsOnThirdAttempt(t *testing.T) {
	attempts := 0
	want := []Message{{Subject: "ok"}}

	msgs, err := fetchWithRetry(context.Background(), func(ctx context.Context) ([]Message, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection reset")
		}
		return want, nil
	})

	require.NoError(t, err)
	assert.Equal(t, want, msgs)
	assert.Equal(t, 3, attempts, "no further attempts after success")
}

func TestFetchWithRetry_ExhaustsAfterThreeAttempts(t *testing.T) {
	attempts := 0
	lastErr := errors.New("login failed")

	_, err := fetchWithRetry(context.Background(), func(ctx context.Context) ([]Message, error) {
		attempts++
		return nil, lastErr
	})

	assert.ErrorIs(t, err, lastErr)
	assert.Equal(t, 3, attempts)
}

func TestFetchWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	_, err := fetchWithRetry(ctx, func(ctx context.Context) ([]Message, error) {
		attempts++
		cancel()
		return nil, errors.New("down")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts, "cancellation suppresses further attempts")
}

const rawTestMessage = `From: Offers <offers@acme.com>
To: pricing@ourco.example
Cc: manager@ourco.example
Subject: New price list
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="PARTBOUNDARY"

--PARTBOUNDARY
Content-Type: text/plain

Hi, prices attached.
--PARTBOUNDARY
Content-Type: text/csv
Content-Disposition: attachment; filename="prices.csv"

username,mcc,mnc,price,currency
client1,202,01,12.5,EUR
--PARTBOUNDARY--
`

func TestParseMessage(t *testing.T) {
	raw := strings.ReplaceAll(rawTestMessage, "\n", "\r\n")

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)

	assert.Contains(t, msg.From, "offers@acme.com")
	assert.Contains(t, msg.To, "pricing@ourco.example")
	assert.Contains(t, msg.Cc, "manager@ourco.example")
	assert.Equal(t, "New price list", msg.Subject)

	require.Len(t, msg.Attachments, 1, "body part without filename is not an attachment")
	assert.Equal(t, "prices.csv", msg.Attachments[0].Filename)
	assert.Contains(t, string(msg.Attachments[0].Data), "client1,202,01,12.5,EUR")
}

const rawInlineMessage = `From: offers@acme.com
Subject: Rates inline
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="PARTBOUNDARY"

--PARTBOUNDARY
Content-Type: text/plain

See below.
--PARTBOUNDARY
Content-Type: text/csv; name="inline_rates.csv"
Content-Disposition: inline; filename="inline_rates.csv"

username,mccmnc,price
client1,20201,0.05
--PARTBOUNDARY--
`

// Inline parts that carry a filename are price sheets too.
func TestParseMessage_InlinePartWithFilename(t *testing.T) {
	raw := strings.ReplaceAll(rawInlineMessage, "\n", "\r\n")

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)

	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "inline_rates.csv", msg.Attachments[0].Filename)
	assert.Contains(t, string(msg.Attachments[0].Data), "client1,20201,0.05")
}
