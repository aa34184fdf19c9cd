package sources

import (
	"bytes"
	"context"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// LiveFeed streams marker data from a websocket. Every text message is a JSON array
// of records that replaces the previous set.
type LiveFeed struct {
	URL        string
	Dialer     *websocket.Dialer
	MaxBackoff time.Duration
}

// Run connects and delivers each batch until ctx is cancelled, reconnecting with
// exponential backoff.
func (f *LiveFeed) Run(ctx context.Context, deliver func([]Record)) error {
	dialer := f.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	maxBackoff := f.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 60 * time.Second
	}

	backoff := time.Second
	for {
		log.Printf("[live] Connecting to %s", f.URL)
		c, _, err := dialer.DialContext(ctx, f.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[live] Dial error: %v. Retrying in %v...", err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second

		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		for {
			typ, message, err := c.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("[live] Read error: %v. Reconnecting...", err)
				}
				break
			}
			if typ != websocket.TextMessage {
				continue
			}
			recs, err := ParseJSON(bytes.NewReader(message))
			if err != nil {
				log.Printf("[live] Skipping malformed message: %v", err)
				continue
			}
			deliver(recs)
		}
		stop()
		_ = c.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
