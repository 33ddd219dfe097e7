package compose

import (
	"math/rand/v2"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bskypromo/internal/domain"
)

// newTestComposer builds a composer with a fixed seed and a quiet logger.
func newTestComposer(t *testing.T, packs []domain.StarterPack, feeds []domain.Feed, reasons []domain.Reason, seed uint64) *Composer {
	t.Helper()

	testLogger := logrus.New()
	testLogger.SetOutput(os.Stderr)
	testLogger.SetLevel(logrus.ErrorLevel)

	return NewComposer(packs, feeds, reasons, rand.New(rand.NewPCG(seed, 0)), testLogger)
}

func TestComposer_StarterPackExactRender(t *testing.T) {
	pack := domain.StarterPack{
		Name:        "Tech Enthusiasts",
		Description: "Amazing developers and tech innovators you should follow",
		Link:        "https://bsky.app/starter-pack/tech",
	}
	// Only the pack pool is populated, so every draw lands on it.
	c := newTestComposer(t, []domain.StarterPack{pack}, nil, nil, 1)

	res, err := c.Compose()
	require.NoError(t, err)

	want := "Check out my \"Tech Enthusiasts\" starter pack:\n" +
		"Amazing developers and tech innovators you should follow\n" +
		"https://bsky.app/starter-pack/tech"
	assert.Equal(t, want, res.Text)
	assert.Equal(t, domain.KindStarterPack, res.Kind)
	assert.Equal(t, "Tech Enthusiasts", res.Title)
}

func TestComposer_FeedExactRender(t *testing.T) {
	feed := domain.Feed{
		Name:        "Science Papers",
		Description: "Fresh preprints across every field",
		Link:        "https://bsky.app/profile/sci/feed/papers",
	}
	c := newTestComposer(t, nil, []domain.Feed{feed}, nil, 1)

	res, err := c.Compose()
	require.NoError(t, err)

	want := "Feed to pin!: Science Papers\n" +
		"Fresh preprints across every field\n" +
		"Pin here: https://bsky.app/profile/sci/feed/papers"
	assert.Equal(t, want, res.Text)
	assert.Equal(t, domain.KindFeed, res.Kind)
}

func TestComposer_ReasonVerbatim(t *testing.T) {
	reason := domain.Reason("Your feed, your rules: algorithmic choice is built in.")
	c := newTestComposer(t, nil, nil, []domain.Reason{reason}, 1)

	res, err := c.Compose()
	require.NoError(t, err)
	assert.Equal(t, string(reason), res.Text)
	assert.Equal(t, domain.KindReason, res.Kind)
}

func TestComposer_ReasonTruncatedAtWordBoundary(t *testing.T) {
	// 300 characters of repeating words, well over the limit.
	raw := strings.Repeat("lorem ipsum ", 25)
	require.Len(t, raw, 300)

	c := newTestComposer(t, nil, nil, []domain.Reason{domain.Reason(raw)}, 1)

	res, err := c.Compose()
	require.NoError(t, err)

	assert.LessOrEqual(t, utf8.RuneCountInString(res.Text), MaxTweetLength)
	require.True(t, strings.HasSuffix(res.Text, "..."), "truncated reason must end with an ellipsis")

	// The kept part must be a prefix of the original ending on a word
	// boundary, not a mid-word cut.
	kept := strings.TrimSuffix(res.Text, "...")
	require.True(t, strings.HasPrefix(raw, kept))
	assert.False(t, strings.HasSuffix(kept, " "))
	assert.Equal(t, byte(' '), raw[len(kept)], "cut must fall on a word boundary")
}

func TestComposer_TruncationPreservesNameAndLink(t *testing.T) {
	pack := domain.StarterPack{
		Name:        "Indie Game Devs",
		Description: strings.Repeat("Creators shipping wonderful small games every week. ", 10),
		Link:        "https://bsky.app/starter-pack/indie-games",
	}
	c := newTestComposer(t, []domain.StarterPack{pack}, nil, nil, 1)

	res, err := c.Compose()
	require.NoError(t, err)

	assert.LessOrEqual(t, utf8.RuneCountInString(res.Text), MaxTweetLength)
	assert.Contains(t, res.Text, "\""+pack.Name+"\"", "name must survive truncation")
	assert.True(t, strings.HasSuffix(res.Text, "\n"+pack.Link), "link must appear verbatim at the end")
	assert.Contains(t, res.Text, "...")
}

func TestComposer_MultibyteDescription(t *testing.T) {
	feed := domain.Feed{
		Name:        "日本語ニュース",
		Description: strings.Repeat("速報と解説を毎日お届けします。", 30),
		Link:        "https://bsky.app/profile/jp/feed/news",
	}
	c := newTestComposer(t, nil, []domain.Feed{feed}, nil, 1)

	res, err := c.Compose()
	require.NoError(t, err)

	assert.LessOrEqual(t, utf8.RuneCountInString(res.Text), MaxTweetLength)
	assert.Contains(t, res.Text, feed.Link)
	assert.True(t, utf8.ValidString(res.Text), "rune-based cut must not split a code point")
}

func TestComposer_ContentTooLong(t *testing.T) {
	pack := domain.StarterPack{
		Name:        "Oversized",
		Description: "irrelevant",
		Link:        "https://example.com/" + strings.Repeat("x", 300),
	}
	c := newTestComposer(t, []domain.StarterPack{pack}, nil, nil, 1)

	_, err := c.Compose()
	require.ErrorIs(t, err, ErrContentTooLong)
}

func TestComposer_EmptyPools(t *testing.T) {
	c := newTestComposer(t, nil, nil, nil, 1)

	_, err := c.Compose()
	require.ErrorIs(t, err, ErrEmptyContentPool)
}

func TestComposer_FallsBackToNonEmptyKind(t *testing.T) {
	reasons := []domain.Reason{"Only reasons are loaded."}
	c := newTestComposer(t, nil, nil, reasons, 42)

	// Whatever kind the first draw lands on, the composer must settle on the
	// only populated pool.
	for range 100 {
		res, err := c.Compose()
		require.NoError(t, err)
		assert.Equal(t, domain.KindReason, res.Kind)
	}
}

func TestComposer_KindSelectionUniform(t *testing.T) {
	packs := []domain.StarterPack{{Name: "p", Description: "d", Link: "https://bsky.app/p"}}
	feeds := []domain.Feed{{Name: "f", Description: "d", Link: "https://bsky.app/f"}}
	reasons := []domain.Reason{"r"}
	c := newTestComposer(t, packs, feeds, reasons, 7)

	const n = 10000
	counts := make(map[domain.Kind]int)
	for range n {
		res, err := c.Compose()
		require.NoError(t, err)
		counts[res.Kind]++
	}

	for _, kind := range []domain.Kind{domain.KindStarterPack, domain.KindFeed, domain.KindReason} {
		assert.InDelta(t, float64(n)/3, float64(counts[kind]), 300,
			"kind %s should be drawn about a third of the time", kind)
	}
}

func TestComposer_DeterministicForSeed(t *testing.T) {
	packs := []domain.StarterPack{
		{Name: "a", Description: "first", Link: "https://bsky.app/a"},
		{Name: "b", Description: "second", Link: "https://bsky.app/b"},
	}
	feeds := []domain.Feed{{Name: "f", Description: "d", Link: "https://bsky.app/f"}}
	reasons := []domain.Reason{"one", "two", "three"}

	first, err := newTestComposer(t, packs, feeds, reasons, 99).Compose()
	require.NoError(t, err)
	second, err := newTestComposer(t, packs, feeds, reasons, 99).Compose()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTruncateAtWord(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		budget int
		want   string
	}{
		{"fits", "short text", 20, "short text"},
		{"word boundary", "alpha beta gamma", 12, "alpha beta"},
		{"no boundary in budget", "supercalifragilistic", 8, "supercal"},
		{"zero budget", "anything", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateAtWord(tt.in, tt.budget))
		})
	}
}
