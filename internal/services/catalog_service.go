// Package services – CatalogService
//
// CatalogService serves the read-only shop catalog and learning videos. Reads
// go through an optional cache (Redis in production); any cache failure falls
// through to the database. The catalog is loaded from a YAML seed file at
// startup and upserted by id.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v2"
	"gorm.io/gorm"

	"github.com/tbourn/go-mealplan-backend/internal/cache"
	"github.com/tbourn/go-mealplan-backend/internal/domain"
	"github.com/tbourn/go-mealplan-backend/internal/repo"
)

// CatalogSeed is the layout of the catalog seed file.
type CatalogSeed struct {
	Items  []domain.CatalogItem `yaml:"items"`
	Videos []domain.Video       `yaml:"videos"`
}

// CatalogService lists catalog items and videos.
type CatalogService struct {
	DB *gorm.DB

	// Cache is optional; nil disables caching.
	Cache cache.Cache
	TTL   time.Duration
}

const (
	kindItems  = "items"
	kindVideos = "videos"
)

func catalogKey(kind, category string) string {
	return "catalog:" + kind + ":" + category
}

// Items returns shop items, filtered by category when non-empty.
func (s *CatalogService) Items(ctx context.Context, category string) ([]domain.CatalogItem, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Items", trace.WithAttributes(attribute.String("category", category)))
	defer span.End()

	category = strings.TrimSpace(category)
	var out []domain.CatalogItem
	if s.cached(ctx, kindItems, category, &out) {
		return out, nil
	}
	out, err := repo.ListCatalogItems(ctx, s.DB, category)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.CatalogItem{}
	}
	s.store(ctx, kindItems, category, out)
	return out, nil
}

// Videos returns videos, filtered by category when non-empty.
func (s *CatalogService) Videos(ctx context.Context, category string) ([]domain.Video, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Videos", trace.WithAttributes(attribute.String("category", category)))
	defer span.End()

	category = strings.TrimSpace(category)
	var out []domain.Video
	if s.cached(ctx, kindVideos, category, &out) {
		return out, nil
	}
	out, err := repo.ListVideos(ctx, s.DB, category)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Video{}
	}
	s.store(ctx, kindVideos, category, out)
	return out, nil
}

// cached loads kind/category into dest and reports a hit.
func (s *CatalogService) cached(ctx context.Context, kind, category string, dest any) bool {
	if s.Cache == nil || s.TTL <= 0 {
		return false
	}
	err := s.Cache.GetJSON(ctx, catalogKey(kind, category), dest)
	switch {
	case err == nil:
		catalogCache.WithLabelValues(kind, "hit").Inc()
		return true
	case errors.Is(err, cache.ErrMiss):
		catalogCache.WithLabelValues(kind, "miss").Inc()
	default:
		catalogCache.WithLabelValues(kind, "error").Inc()
		log.Warn().Err(err).Str("kind", kind).Msg("catalog cache read failed")
	}
	return false
}

func (s *CatalogService) store(ctx context.Context, kind, category string, v any) {
	if s.Cache == nil || s.TTL <= 0 {
		return
	}
	if err := s.Cache.SetJSON(ctx, catalogKey(kind, category), v, s.TTL); err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("catalog cache write failed")
	}
}

// LoadCatalogSeed decodes a YAML catalog seed.
func LoadCatalogSeed(r io.Reader) (*CatalogSeed, error) {
	var seed CatalogSeed
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog seed: %w", err)
	}
	for i, it := range seed.Items {
		if strings.TrimSpace(it.ID) == "" || strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("catalog seed: item %d needs id and name", i)
		}
		if it.PriceCents < 0 {
			return nil, fmt.Errorf("catalog seed: item %q has a negative price", it.ID)
		}
		if it.Currency == "" {
			seed.Items[i].Currency = "USD"
		}
	}
	for i, v := range seed.Videos {
		if strings.TrimSpace(v.ID) == "" || strings.TrimSpace(v.URL) == "" {
			return nil, fmt.Errorf("catalog seed: video %d needs id and url", i)
		}
	}
	return &seed, nil
}

// Seed upserts seed in one transaction and drops cached listings.
func (s *CatalogService) Seed(ctx context.Context, seed *CatalogSeed) error {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Seed",
		trace.WithAttributes(
			attribute.Int("items", len(seed.Items)),
			attribute.Int("videos", len(seed.Videos)),
		),
	)
	defer span.End()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpsertCatalogItems(ctx, tx, seed.Items); err != nil {
			return err
		}
		return repo.UpsertVideos(ctx, tx, seed.Videos)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// SeedFile loads and applies the seed at path. An empty path is a no-op.
func (s *CatalogService) SeedFile(ctx context.Context, path string) (*CatalogSeed, error) {
	if strings.TrimSpace(path) == "" {
		return &CatalogSeed{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seed, err := LoadCatalogSeed(f)
	if err != nil {
		return nil, err
	}
	return seed, s.Seed(ctx, seed)
}

// invalidate deletes the cached listing of every known category.
func (s *CatalogService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	keys := []string{catalogKey(kindItems, ""), catalogKey(kindVideos, "")}
	var cats []string
	if err := s.DB.WithContext(ctx).Model(&domain.CatalogItem{}).Distinct().Pluck("category", &cats).Error; err == nil {
		for _, c := range cats {
			keys = append(keys, catalogKey(kindItems, c))
		}
	}
	cats = nil
	if err := s.DB.WithContext(ctx).Model(&domain.Video{}).Distinct().Pluck("category", &cats).Error; err == nil {
		for _, c := range cats {
			keys = append(keys, catalogKey(kindVideos, c))
		}
	}
	if err := s.Cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
