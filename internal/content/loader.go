package content

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"bskypromo/internal/domain"
)

// Loader reads the three content stores from disk. A missing file is not an
// error: the bot posts from whatever content exists, and the composer
// surfaces the case where nothing exists at all.
type Loader struct {
	log logrus.FieldLogger
}

// NewLoader creates a content loader.
func NewLoader(logger logrus.FieldLogger) *Loader {
	return &Loader{
		log: logger.WithField("component", "content_loader"),
	}
}

// listing is one row of a tabular content file.
type listing struct {
	name        string
	description string
	link        string
}

// LoadStarterPacks reads starter pack listings from a CSV file with the
// header columns name, description and link.
func (l *Loader) LoadStarterPacks(path string) ([]domain.StarterPack, error) {
	rows, err := l.readListings(path)
	if err != nil {
		return nil, fmt.Errorf("loading starter packs: %w", err)
	}

	packs := make([]domain.StarterPack, 0, len(rows))
	for _, row := range rows {
		packs = append(packs, domain.StarterPack{
			Name:        row.name,
			Description: row.description,
			Link:        row.link,
		})
	}
	l.log.WithFields(logrus.Fields{
		"path":  path,
		"count": len(packs),
	}).Info("Starter packs loaded")
	return packs, nil
}

// LoadFeeds reads feed listings from a CSV file with the same columns as the
// starter pack file.
func (l *Loader) LoadFeeds(path string) ([]domain.Feed, error) {
	rows, err := l.readListings(path)
	if err != nil {
		return nil, fmt.Errorf("loading feeds: %w", err)
	}

	feeds := make([]domain.Feed, 0, len(rows))
	for _, row := range rows {
		feeds = append(feeds, domain.Feed{
			Name:        row.name,
			Description: row.description,
			Link:        row.link,
		})
	}
	l.log.WithFields(logrus.Fields{
		"path":  path,
		"count": len(feeds),
	}).Info("Feeds loaded")
	return feeds, nil
}

// LoadReasons reads one reason per line from a plain-text file, skipping
// blank lines.
func (l *Loader) LoadReasons(path string) ([]domain.Reason, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.WithField("path", path).Warn("Reasons file not found, pool is empty")
			return nil, nil
		}
		return nil, fmt.Errorf("loading reasons: %w", err)
	}
	defer f.Close()

	var reasons []domain.Reason
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		reasons = append(reasons, domain.Reason(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loading reasons: %w", err)
	}

	l.log.WithFields(logrus.Fields{
		"path":  path,
		"count": len(reasons),
	}).Info("Reasons loaded")
	return reasons, nil
}

// readListings parses a name/description/link CSV. Rows with a missing or
// blank required field are skipped with a warning, mirroring how an operator
// curates these files by hand.
func (l *Loader) readListings(path string) ([]listing, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.WithField("path", path).Warn("Content file not found, pool is empty")
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"name", "description", "link"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%s is missing required column %q", path, required)
		}
	}

	var rows []listing
	for rowNum := 1; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d of %s: %w", rowNum, path, err)
		}

		row := listing{
			name:        field(record, columns["name"]),
			description: field(record, columns["description"]),
			link:        field(record, columns["link"]),
		}
		if row.name == "" || row.description == "" || row.link == "" {
			l.log.WithFields(logrus.Fields{
				"path": path,
				"row":  rowNum,
			}).Warn("Skipping row with missing fields")
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
