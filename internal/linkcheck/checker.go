package linkcheck

import (
	"context"

	"github.com/sirupsen/logrus"

	"bskypromo/internal/domain"
)

// Metadata is what a live content link exposes about itself.
type Metadata struct {
	Title       string
	Description string
}

// Checker defines the interface for verifying that a content link is alive.
type Checker interface {
	// Check loads the URL and returns its page metadata, or an error when
	// the page cannot be reached or rendered.
	Check(ctx context.Context, url string) (Metadata, error)
}

// Result is the outcome of checking one content record's link.
type Result struct {
	Name string
	Link string
	Meta Metadata
	Err  error
}

// CheckAll verifies every starter pack and feed link and returns one result
// per record. Reasons carry no links, so they are not part of a check run.
func CheckAll(ctx context.Context, checker Checker, packs []domain.StarterPack, feeds []domain.Feed, logger logrus.FieldLogger) []Result {
	log := logger.WithField("component", "linkcheck")

	var results []Result
	check := func(name, link string) {
		meta, err := checker.Check(ctx, link)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"name": name,
				"link": link,
			}).Error("Link check failed")
		} else {
			log.WithFields(logrus.Fields{
				"name":  name,
				"link":  link,
				"title": meta.Title,
			}).Info("Link is alive")
		}
		results = append(results, Result{Name: name, Link: link, Meta: meta, Err: err})
	}

	for _, pack := range packs {
		check(pack.Name, pack.Link)
	}
	for _, feed := range feeds {
		check(feed.Name, feed.Link)
	}
	return results
}

// Failures counts the results whose link could not be verified.
func Failures(results []Result) int {
	var n int
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
