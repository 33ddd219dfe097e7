package compose

import (
	"errors"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"bskypromo/internal/domain"
)

// MaxTweetLength is the platform-enforced character limit per post.
const MaxTweetLength = 280

// ellipsis marks where a description was shortened to fit the limit.
const ellipsis = "..."

var (
	// ErrEmptyContentPool is returned when no pool has any content to post.
	ErrEmptyContentPool = errors.New("no content available in any pool")

	// ErrContentTooLong is returned when a record cannot fit the platform
	// limit even with its description removed entirely (e.g. the link alone
	// exceeds the limit).
	ErrContentTooLong = errors.New("content cannot fit the character limit")
)

// Result is one composed tweet, ready for submission.
type Result struct {
	// Text is the rendered tweet, guaranteed to be at most MaxTweetLength
	// runes with any link present verbatim.
	Text string

	// Kind is the content kind the tweet was rendered from.
	Kind domain.Kind

	// Title identifies the selected record in logs (the pack or feed name,
	// or a prefix of the reason text).
	Title string
}

// Composer selects one record from the loaded content pools and renders it
// into a tweet. It holds no state between calls beyond the injected random
// source, so a given seed and set of pools always produce the same output.
type Composer struct {
	packs   []domain.StarterPack
	feeds   []domain.Feed
	reasons []domain.Reason
	rng     *rand.Rand
	log     logrus.FieldLogger
}

// NewComposer creates a composer over the given pools. The random source is
// injected so selection is deterministic under test.
func NewComposer(packs []domain.StarterPack, feeds []domain.Feed, reasons []domain.Reason, rng *rand.Rand, logger logrus.FieldLogger) *Composer {
	return &Composer{
		packs:   packs,
		feeds:   feeds,
		reasons: reasons,
		rng:     rng,
		log:     logger.WithField("component", "composer"),
	}
}

// Compose picks a content kind uniformly at random (each kind equally likely
// regardless of pool size), then one record from that kind's pool uniformly,
// and renders it. When the drawn kind's pool is empty it re-draws among the
// remaining non-empty kinds; ErrEmptyContentPool is returned only when all
// three pools are empty.
func (c *Composer) Compose() (Result, error) {
	kind, ok := c.pickKind()
	if !ok {
		c.log.Warn("All content pools are empty")
		return Result{}, ErrEmptyContentPool
	}

	var (
		res Result
		err error
	)
	switch kind {
	case domain.KindStarterPack:
		pack := c.packs[c.rng.IntN(len(c.packs))]
		c.log.WithField("name", pack.Name).Info("Selected starter pack")
		res, err = renderStarterPack(pack)
	case domain.KindFeed:
		feed := c.feeds[c.rng.IntN(len(c.feeds))]
		c.log.WithField("name", feed.Name).Info("Selected feed")
		res, err = renderFeed(feed)
	case domain.KindReason:
		reason := c.reasons[c.rng.IntN(len(c.reasons))]
		c.log.WithField("reason", snippet(string(reason))).Info("Selected reason")
		res, err = renderReason(reason)
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// pickKind draws a kind uniformly over all three kinds first, honoring the
// equal-likelihood rule, and falls back to a uniform draw over the non-empty
// kinds when the first draw lands on an empty pool.
func (c *Composer) pickKind() (domain.Kind, bool) {
	all := []domain.Kind{domain.KindStarterPack, domain.KindFeed, domain.KindReason}

	kind := all[c.rng.IntN(len(all))]
	if c.poolSize(kind) > 0 {
		return kind, true
	}

	var available []domain.Kind
	for _, k := range all {
		if c.poolSize(k) > 0 {
			available = append(available, k)
		}
	}
	if len(available) == 0 {
		return "", false
	}
	return available[c.rng.IntN(len(available))], true
}

func (c *Composer) poolSize(kind domain.Kind) int {
	switch kind {
	case domain.KindStarterPack:
		return len(c.packs)
	case domain.KindFeed:
		return len(c.feeds)
	case domain.KindReason:
		return len(c.reasons)
	}
	return 0
}

func renderStarterPack(pack domain.StarterPack) (Result, error) {
	head := "Check out my \"" + pack.Name + "\" starter pack:\n"
	tail := "\n" + pack.Link

	text, err := fitDescription(head, pack.Description, tail)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Kind: domain.KindStarterPack, Title: pack.Name}, nil
}

func renderFeed(feed domain.Feed) (Result, error) {
	head := "Feed to pin!: " + feed.Name + "\n"
	tail := "\nPin here: " + feed.Link

	text, err := fitDescription(head, feed.Description, tail)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Kind: domain.KindFeed, Title: feed.Name}, nil
}

func renderReason(reason domain.Reason) (Result, error) {
	text, err := fitDescription("", string(reason), "")
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Kind: domain.KindReason, Title: snippet(string(reason))}, nil
}

// fitDescription renders head+description+tail and shortens only the
// description until the whole string fits MaxTweetLength. Head and tail carry
// the template literals plus the name and link, which are never touched.
// Lengths are counted in runes, matching how the platform counts.
func fitDescription(head, description, tail string) (string, error) {
	full := head + description + tail
	if utf8.RuneCountInString(full) <= MaxTweetLength {
		return full, nil
	}

	overhead := utf8.RuneCountInString(head) + utf8.RuneCountInString(tail) + utf8.RuneCountInString(ellipsis)
	budget := MaxTweetLength - overhead
	if budget < 0 {
		return "", ErrContentTooLong
	}

	full = head + truncateAtWord(description, budget) + ellipsis + tail
	if utf8.RuneCountInString(full) > MaxTweetLength {
		return "", ErrContentTooLong
	}
	return full, nil
}

// truncateAtWord cuts s down to at most budget runes, preferring the last
// word boundary within the budget and falling back to a hard rune cut when
// the first word alone is over budget.
func truncateAtWord(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}

	cut := string(runes[:budget])
	if i := strings.LastIndex(cut, " "); i > 0 {
		return strings.TrimRight(cut[:i], " ")
	}
	return cut
}

// snippet shortens free text for log output.
func snippet(s string) string {
	const max = 50
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + ellipsis
}
