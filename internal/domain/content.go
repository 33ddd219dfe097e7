package domain

import "time"

// Kind identifies a category of promotable content. Each kind has its own
// rendering template in the compose package.
type Kind string

const (
	KindStarterPack Kind = "starter_pack"
	KindFeed        Kind = "feed"
	KindReason      Kind = "reason"
)

// StarterPack is one curated Bluesky starter pack listing.
type StarterPack struct {
	// Name is the display name of the pack.
	Name string `json:"name"`

	// Description is the only field that may be shortened during rendering.
	Description string `json:"description"`

	// Link is the pack URL. It is always posted verbatim, never shortened.
	Link string `json:"link"`
}

// Feed is one custom Bluesky feed listing. Same shape as StarterPack but
// rendered with a different template.
type Feed struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// Reason is a single free-text line giving a reason to join Bluesky.
// It is posted verbatim, truncated only when it exceeds the platform limit.
type Reason string

// PostRecord is the history entry written after a successful submission.
type PostRecord struct {
	// Text is the tweet exactly as submitted.
	Text string `json:"text"`

	// Kind is the content kind the tweet was rendered from.
	Kind Kind `json:"kind"`

	// TweetID is the id returned by the posting API.
	TweetID string `json:"tweet_id"`

	// PostedAt indicates when the submission succeeded.
	PostedAt time.Time `json:"posted_at"`
}
