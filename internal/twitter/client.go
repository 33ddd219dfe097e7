package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.twitter.com"

// Poster is the outbound submission interface. It is called exactly once per
// invocation; any error is terminal for that run.
type Poster interface {
	// Post submits the text as a tweet and returns the created tweet id.
	Post(ctx context.Context, text string) (string, error)
}

// Credentials holds the OAuth 1.0a key material for the Twitter API.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// SubmissionError reports a non-success response from the posting API, such
// as an authentication failure or rate limiting.
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("posting failed with status %d: %s", e.StatusCode, e.Body)
}

// Client posts tweets through the Twitter API v2 create-tweet endpoint,
// signing each request with OAuth 1.0a.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        logrus.FieldLogger
}

// NewClient creates a posting client. An empty baseURL selects the real
// Twitter API; tests point it at a local server.
func NewClient(creds Credentials, baseURL string, logger logrus.FieldLogger) *Client {
	oauthConfig := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)

	httpClient := oauthConfig.Client(oauth1.NoContext, token)
	httpClient.Timeout = 30 * time.Second

	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		log:        logger.WithField("component", "twitter"),
	}
}

// Post submits text via POST /2/tweets. The API responds 201 with the new
// tweet id on success; every other status becomes a SubmissionError.
func (c *Client) Post(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return "", fmt.Errorf("encoding tweet payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building tweet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting tweet: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("reading tweet response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		c.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("Tweet was rejected by the API")
		return "", &SubmissionError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decoding tweet response: %w", err)
	}

	c.log.WithField("tweet_id", created.Data.ID).Info("Tweet posted successfully")
	return created.Data.ID, nil
}
