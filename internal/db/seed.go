package db

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/qri-io/jsonschema"
)

//go:embed seed/*.json
var seedFS embed.FS

type seedAnnouncement struct {
	Title         string   `json:"title"`
	Platform      string   `json:"platform"`
	Type          string   `json:"type"`
	URL           string   `json:"url"`
	StartsAt      *string  `json:"starts_at"`
	EndsAt        *string  `json:"ends_at"`
	DiscountPct   *int     `json:"discount_pct"`
	PriceOriginal *string  `json:"price_original"`
	PriceCurrent  *string  `json:"price_current"`
	Tags          []string `json:"tags"`
}

type seedFact struct {
	Text      string `json:"text"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url"`
}

// Seed loads the embedded announcement and fact fixtures. It only
// inserts when the target table is empty, so restarts are harmless.
func (db *DB) Seed(ctx context.Context) error {
	if err := db.seedAnnouncements(ctx); err != nil {
		return err
	}
	return db.seedFacts(ctx)
}

func (db *DB) seedAnnouncements(ctx context.Context) error {
	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(1) FROM announcements`).Scan(&count); err != nil {
		return fmt.Errorf("count announcements: %w", err)
	}
	if count > 0 {
		return nil
	}

	data, err := seedFS.ReadFile("seed/announcements.json")
	if err != nil {
		return fmt.Errorf("read announcements seed: %w", err)
	}
	if err := validateSeed(ctx, data); err != nil {
		return err
	}

	var items []seedAnnouncement
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode announcements seed: %w", err)
	}

	nowMillis := time.Now().UnixMilli()
	for _, a := range items {
		tags, err := json.Marshal(a.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		if a.Tags == nil {
			tags = []byte("[]")
		}
		_, err = db.Exec(ctx,
			`INSERT INTO announcements (title, platform, type, url, starts_at, ends_at, discount_pct, price_original, price_current, tags, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Title, a.Platform, a.Type, a.URL, a.StartsAt, a.EndsAt,
			a.DiscountPct, a.PriceOriginal, a.PriceCurrent, string(tags), nowMillis)
		if err != nil {
			return fmt.Errorf("insert announcement %q: %w", a.Title, err)
		}
	}
	return nil
}

func (db *DB) seedFacts(ctx context.Context) error {
	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(1) FROM facts`).Scan(&count); err != nil {
		return fmt.Errorf("count facts: %w", err)
	}
	if count > 0 {
		return nil
	}

	data, err := seedFS.ReadFile("seed/facts.json")
	if err != nil {
		return fmt.Errorf("read facts seed: %w", err)
	}

	var items []seedFact
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode facts seed: %w", err)
	}

	nowMillis := time.Now().UnixMilli()
	for _, f := range items {
		_, err := db.Exec(ctx,
			`INSERT INTO facts (text, source, source_url, active, created_at) VALUES (?, ?, ?, 1, ?)`,
			f.Text, f.Source, f.SourceURL, nowMillis)
		if err != nil {
			return fmt.Errorf("insert fact: %w", err)
		}
	}
	return nil
}

// validateSeed checks the announcements fixture against its embedded
// JSON Schema so a bad edit fails loudly at startup instead of seeding
// half-broken rows.
func validateSeed(ctx context.Context, data []byte) error {
	schemaBytes, err := seedFS.ReadFile("seed/announcements.schema.json")
	if err != nil {
		return fmt.Errorf("read announcements schema: %w", err)
	}

	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(schemaBytes, rs); err != nil {
		return fmt.Errorf("parse announcements schema: %w", err)
	}

	verrs, err := rs.ValidateBytes(ctx, data)
	if err != nil {
		return fmt.Errorf("schema validate error: %w", err)
	}
	if len(verrs) > 0 {
		var sb strings.Builder
		for _, v := range verrs {
			sb.WriteString(v.Message)
			sb.WriteString("; ")
		}
		return fmt.Errorf("announcements seed invalid: %s", sb.String())
	}
	return nil
}
