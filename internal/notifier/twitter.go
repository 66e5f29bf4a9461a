package notifier

import (
	"fmt"
	"os"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"pogocal/internal/event"
)

// TwitterNotifier posts announcements to Twitter.
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a Twitter notifier from environment
// credentials:
//   - TWITTER_API_KEY
//   - TWITTER_API_SECRET
//   - TWITTER_ACCESS_TOKEN
//   - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	cfg := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := cfg.Client(oauth1.NoContext, token)

	return &TwitterNotifier{client: twitter.NewClient(httpClient)}, nil
}

// Notify posts one tweet per record, pausing between posts to stay under
// rate limits.
func (n *TwitterNotifier) Notify(records []*event.Record) error {
	for i, rec := range records {
		text := formatAnnouncement(rec)

		_, _, err := n.client.Statuses.Update(text, nil)
		if err != nil {
			return fmt.Errorf("posting announcement for %q: %w", rec.Title, err)
		}

		if i < len(records)-1 {
			time.Sleep(2 * time.Second)
		}
	}
	return nil
}
