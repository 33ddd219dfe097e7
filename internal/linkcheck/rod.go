package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// pageTimeout bounds how long a single link check may take.
const pageTimeout = 30 * time.Second

// RodChecker implements the Checker interface with a headless browser, so
// that links behind client-side rendering still verify correctly.
type RodChecker struct {
	log logrus.FieldLogger
}

// NewRodChecker creates a browser-backed link checker.
func NewRodChecker(logger logrus.FieldLogger) *RodChecker {
	return &RodChecker{
		log: logger.WithField("component", "rod_checker"),
	}
}

// Check loads the URL in a fresh headless browser and extracts the page
// title and meta description. Check runs are rare maintenance operations, so
// a browser per call keeps the implementation simple.
func (c *RodChecker) Check(ctx context.Context, url string) (meta Metadata, err error) {
	log := c.log.WithField("url", url)
	log.Info("Checking link")

	path, exists := launcher.LookPath()
	if !exists {
		log.Error("Cannot find browser executable for rod")
		return Metadata{}, errors.New("rod browser dependency not found")
	}
	u := launcher.New().Bin(path).MustLaunch()
	browser := rod.New().ControlURL(u)
	if err = browser.Connect(); err != nil {
		log.WithError(err).Error("Failed to connect to rod browser")
		return Metadata{}, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Error closing rod browser instance")
			if err == nil {
				err = fmt.Errorf("error closing browser: %w", closeErr)
			}
		}
	}()

	var page *rod.Page
	page, err = browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		log.WithError(err).Error("Failed to create rod page")
		return Metadata{}, fmt.Errorf("failed to create page: %w", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Error closing rod page")
			if err == nil {
				err = fmt.Errorf("error closing page: %w", closeErr)
			}
		}
	}()

	pageCtx, cancel := context.WithTimeout(ctx, pageTimeout)
	defer cancel()
	page = page.Context(pageCtx)

	if err = page.WaitLoad(); err != nil {
		if errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
			log.WithError(pageCtx.Err()).Warn("Link check timed out")
			return Metadata{}, fmt.Errorf("link check timed out for %s: %w", url, pageCtx.Err())
		}
		log.WithError(err).Error("Failed to wait for page load")
		return Metadata{}, fmt.Errorf("failed waiting for page load: %w", err)
	}

	// --- Extract Title ---
	titleElement, titleErr := page.Element("title")
	if titleErr != nil {
		log.WithError(titleErr).Warn("Could not find title element")
	} else {
		title, textErr := titleElement.Text()
		if textErr != nil {
			log.WithError(textErr).Warn("Failed to get text from title element")
		} else {
			meta.Title = strings.TrimSpace(title)
		}
	}

	// --- Extract Description ---
	descSelectors := []string{
		`meta[name="description"]`,
		`meta[property="og:description"]`,
	}
	for _, selector := range descSelectors {
		descElement, descErr := page.Element(selector)
		if descErr != nil {
			continue
		}
		descContent, attrErr := descElement.Attribute("content")
		if attrErr == nil && descContent != nil {
			meta.Description = strings.TrimSpace(*descContent)
			if meta.Description != "" {
				break
			}
		}
	}

	log.WithField("title", meta.Title).Info("Link check completed")
	return meta, nil
}
