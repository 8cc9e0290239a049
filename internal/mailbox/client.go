// Package mailbox retrieves recent messages from an IMAP folder. Mailbox
// connections are the pipeline's primary source of transient failure, so the
// whole fetch is wrapped in a bounded exponential retry.
package mailbox

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/rs/zerolog/log"
)

const (
	retryAttempts     = 3
	retryInitialDelay = time.Second
	retryMaxDelay     = 8 * time.Second
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Folder   string
	SSL      bool
}

// Client fetches recent messages from a single IMAP account.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.Folder == "" {
		cfg.Folder = "INBOX"
	}
	return &Client{cfg: cfg}
}

// Fetch retrieves up to limit of the most recent non-deleted messages,
// retrying the whole connect-login-fetch sequence on failure.
func (c *Client) Fetch(ctx context.Context, limit int) ([]Message, error) {
	return fetchWithRetry(ctx, func(ctx context.Context) ([]Message, error) {
		return c.fetchOnce(ctx, limit)
	})
}

// fetchWithRetry applies the bounded retry policy: 3 attempts, delay doubling
// from 1s and capped at 8s. The last error surfaces as-is.
func fetchWithRetry(ctx context.Context, fn func(context.Context) ([]Message, error)) ([]Message, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialDelay
	bo.MaxInterval = retryMaxDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	var msgs []Message
	op := func() error {
		var err error
		msgs, err = fn(ctx)
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("mailbox fetch failed, retrying")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, retryAttempts-1), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) fetchOnce(ctx context.Context, limit int) ([]Message, error) {
	client, err := c.dial()
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", c.cfg.Host, err)
	}
	defer client.Close()

	if err := client.Login(c.cfg.User, c.cfg.Password).Wait(); err != nil {
		return nil, fmt.Errorf("login %s: %w", c.cfg.User, err)
	}
	defer client.Logout()

	if _, err := client.Select(c.cfg.Folder, nil).Wait(); err != nil {
		return nil, fmt.Errorf("select folder %s: %w", c.cfg.Folder, err)
	}

	search, err := client.Search(&imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagDeleted},
	}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	nums := search.AllSeqNums()
	if len(nums) == 0 {
		return nil, nil
	}
	// Sequence numbers come back in mailbox order; keep only the newest window.
	if limit > 0 && len(nums) > limit {
		nums = nums[len(nums)-limit:]
	}

	fetched, err := client.Fetch(imap.SeqSetNum(nums...), &imap.FetchOptions{
		BodySection: []*imap.FetchItemBodySection{{}},
	}).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetch %d messages: %w", len(nums), err)
	}

	msgs := make([]Message, 0, len(fetched))
	for _, buf := range fetched {
		raw := buf.FindBodySection(&imap.FetchItemBodySection{})
		if len(raw) == 0 {
			continue
		}
		msg, err := ParseMessage(raw)
		if err != nil {
			log.Warn().Err(err).Uint32("seq", buf.SeqNum).Msg("skipping unparseable message")
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (c *Client) dial() (*imapclient.Client, error) {
	port := c.cfg.Port
	if port == "" {
		if c.cfg.SSL {
			port = "993"
		} else {
			port = "143"
		}
	}
	addr := net.JoinHostPort(c.cfg.Host, port)
	if c.cfg.SSL {
		return imapclient.DialTLS(addr, nil)
	}
	return imapclient.DialInsecure(addr, nil)
}
