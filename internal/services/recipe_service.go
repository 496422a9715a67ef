// Package services – RecipeService
//
// RecipeService owns recipe submission and reads. A submission writes the
// recipe row, finds or creates every ingredient by normalized name, links
// them in author order and, when the client sent an Idempotency-Key, records
// the outcome. All of it commits or rolls back as one transaction.
//
// Public recipes are mirrored into an in-memory search.Live index used by
// Search. Observability: every public method opens an OpenTelemetry span.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
	"github.com/tbourn/go-mealplan-backend/internal/media"
	"github.com/tbourn/go-mealplan-backend/internal/repo"
	"github.com/tbourn/go-mealplan-backend/internal/search"
	"github.com/tbourn/go-mealplan-backend/internal/utils"
)

// AnonymousUser keys idempotency records when the caller names no requester.
const AnonymousUser = "anonymous"

// IngredientInput is one ingredient line as submitted by the client.
type IngredientInput struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// RecipeInput carries a recipe submission.
type RecipeInput struct {
	Title        string
	Description  string
	Instructions string
	OwnerIDRef   string
	IsPublic     bool
	Ingredients  []IngredientInput

	// Image is the raw upload, or nil.
	Image io.Reader

	// IdempotencyKey and RequesterID enable safe retries; both optional.
	IdempotencyKey string
	RequesterID    string
}

// RecipeHit is one search result.
type RecipeHit struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// RecipeService coordinates recipe persistence, image normalization and search.
type RecipeService struct {
	DB     *gorm.DB
	Index  *search.Live
	Images media.Normalizer

	TitleMaxLen    int
	MaxIngredients int

	// PublicBaseURL prefixes share links: <PublicBaseURL>/recipes/<id>.
	PublicBaseURL string

	// MinScore drops search hits below this Jaccard score.
	MinScore float64

	IdempotencyTTL time.Duration

	// Locale drives ingredient name case folding.
	Locale language.Tag
}

// NewRecipeService constructs a RecipeService with defaults.
func NewRecipeService(db *gorm.DB, idx *search.Live) *RecipeService {
	return &RecipeService{
		DB:             db,
		Index:          idx,
		TitleMaxLen:    200,
		MaxIngredients: 100,
		PublicBaseURL:  "http://localhost:3000",
		IdempotencyTTL: 24 * time.Hour,
		Locale:         language.Und,
	}
}

// errIdemRace signals that a concurrent request with the same key committed
// first; the caller replays its result.
var errIdemRace = errors.New("idempotency key claimed concurrently")

// Create validates in and persists the recipe with its ingredient links. The
// returned bool is true when the result is a replay of an earlier request
// with the same idempotency key.
func (s *RecipeService) Create(ctx context.Context, in RecipeInput) (*domain.Recipe, bool, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("owner.id", in.OwnerIDRef),
			attribute.Int("ingredients", len(in.Ingredients)),
			attribute.Bool("idempotent", in.IdempotencyKey != ""),
		),
	)
	defer span.End()

	title := normalizeTitle(in.Title)
	if title == "" {
		return nil, false, ErrTitleRequired
	}
	if s.TitleMaxLen > 0 && utf8.RuneCountInString(title) > s.TitleMaxLen {
		return nil, false, ErrTitleTooLong
	}
	lines, err := s.normalizeIngredients(in.Ingredients)
	if err != nil {
		return nil, false, err
	}

	requester := strings.TrimSpace(in.RequesterID)
	if requester == "" {
		requester = AnonymousUser
	}
	if in.IdempotencyKey != "" {
		if r, ok, err := s.replay(ctx, requester, in.IdempotencyKey); err != nil || ok {
			return r, ok, err
		}
	}

	rec := &domain.Recipe{
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Instructions: strings.TrimSpace(in.Instructions),
		OwnerIDRef:   strings.TrimSpace(in.OwnerIDRef),
		IsPublic:     in.IsPublic,
	}
	if in.Image != nil {
		img, mime, err := s.Images.Normalize(in.Image)
		if err != nil {
			return nil, false, err
		}
		rec.Image, rec.ImageType = img, mime
	}

	var fresh int
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh = 0
		if err := repo.CreateRecipe(ctx, tx, rec); err != nil {
			return err
		}
		for pos, l := range lines {
			ing, created, err := repo.FindOrCreateIngredient(ctx, tx, l.Name)
			if err != nil {
				return fmt.Errorf("ingredient %q: %w", l.Name, err)
			}
			if created {
				fresh++
			}
			if _, err := repo.CreateRecipeIngredient(ctx, tx, rec.ID, ing.ID, l.Quantity, pos); err != nil {
				return fmt.Errorf("link %q: %w", l.Name, err)
			}
		}
		if in.IdempotencyKey != "" {
			_, err := repo.CreateIdempotency(ctx, tx, requester, domain.ScopeRecipeCreate,
				in.IdempotencyKey, rec.ID, http.StatusCreated, s.ttl())
			if errors.Is(err, repo.ErrDuplicate) {
				return errIdemRace
			}
			return err
		}
		return nil
	})
	if errors.Is(err, errIdemRace) {
		r, ok, rerr := s.replay(ctx, requester, in.IdempotencyKey)
		if rerr == nil && !ok {
			rerr = err
		}
		return r, ok, rerr
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}

	recipesCreated.Inc()
	ingredientsCreated.Add(float64(fresh))

	out, err := repo.GetRecipe(ctx, s.DB, rec.ID)
	if err != nil {
		return nil, false, err
	}
	if out.IsPublic && s.Index != nil {
		s.Index.Upsert(recipeDocument(out))
	}
	return out, false, nil
}

// replay returns the recipe recorded for (requester, key), if any.
func (s *RecipeService) replay(ctx context.Context, requester, key string) (*domain.Recipe, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, requester, domain.ScopeRecipeCreate, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	r, err := repo.GetRecipe(ctx, s.DB, rec.ResourceID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, ErrRecipeNotFound
	}
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func (s *RecipeService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}

// normalizeIngredients validates names, folds them to their stored form and
// drops repeats after the first occurrence.
func (s *RecipeService) normalizeIngredients(in []IngredientInput) ([]IngredientInput, error) {
	lower := cases.Lower(s.Locale)
	seen := make(map[string]struct{}, len(in))
	out := make([]IngredientInput, 0, len(in))
	for _, l := range in {
		name := lower.String(normalizeTitle(l.Name))
		if name == "" {
			return nil, ErrIngredientNameRequired
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, IngredientInput{Name: clipRunes(name, 120), Quantity: clipRunes(normalizeTitle(l.Quantity), 64)})
	}
	if s.MaxIngredients > 0 && len(out) > s.MaxIngredients {
		return nil, ErrTooManyIngredients
	}
	return out, nil
}

// List returns a page of recipes, owner-filtered when ownerIDRef is set,
// newest first, with the total count.
func (s *RecipeService) List(ctx context.Context, ownerIDRef string, page, pageSize int) ([]domain.Recipe, int64, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("owner.id", ownerIDRef),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := utils.Offset(page, pageSize)

	total, err := repo.CountRecipes(ctx, s.DB, ownerIDRef)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Recipe{}, 0, nil
	}
	items, err := repo.ListRecipesPage(ctx, s.DB, ownerIDRef, offset, pageSize)
	return items, total, err
}

// Version returns the recipe count and latest update time for ownerIDRef
// (all recipes when empty); handlers derive ETags from it.
func (s *RecipeService) Version(ctx context.Context, ownerIDRef string) (int64, *time.Time, error) {
	return repo.RecipesStats(ctx, s.DB, ownerIDRef)
}

// Get returns one recipe with ingredients.
func (s *RecipeService) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.String("recipe.id", id)))
	defer span.End()

	r, err := repo.GetRecipe(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRecipeNotFound
	}
	return r, err
}

// Search ranks public recipes against q and returns up to k hits scoring at
// least MinScore.
func (s *RecipeService) Search(ctx context.Context, q string, k int) ([]RecipeHit, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(attribute.String("query", q), attribute.Int("k", k)),
	)
	defer span.End()

	q = strings.TrimSpace(q)
	if q == "" || s.Index == nil {
		return []RecipeHit{}, nil
	}
	if k <= 0 {
		k = 10
	}

	results := s.Index.TopK(q, k)
	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r.Score >= s.MinScore {
			ids = append(ids, r.ID)
		}
	}
	titles, err := repo.RecipeTitles(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}

	hits := make([]RecipeHit, 0, len(ids))
	for _, r := range results {
		title, ok := titles[r.ID]
		if !ok || r.Score < s.MinScore {
			continue
		}
		hits = append(hits, RecipeHit{ID: r.ID, Title: title, Snippet: clipRunes(r.Snippet, 200), Score: r.Score})
	}
	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}

// ShareURL is the public link of recipe id.
func (s *RecipeService) ShareURL(id string) string {
	return strings.TrimRight(s.PublicBaseURL, "/") + "/recipes/" + id
}

// ShareQR renders ShareURL(id) as a PNG QR code of size pixels.
func (s *RecipeService) ShareQR(ctx context.Context, id string, size int) ([]byte, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "ShareQR", trace.WithAttributes(attribute.String("recipe.id", id)))
	defer span.End()

	ok, err := repo.RecipeExists(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRecipeNotFound
	}
	return media.QRPNG(s.ShareURL(id), size)
}

// Reindex rebuilds the search index from all public recipes and returns
// how many were loaded.
func (s *RecipeService) Reindex(ctx context.Context) (int, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "Reindex")
	defer span.End()

	if s.Index == nil {
		return 0, nil
	}
	recipes, err := repo.ListPublicRecipes(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	docs := make([]search.Document, 0, len(recipes))
	for i := range recipes {
		docs = append(docs, recipeDocument(&recipes[i]))
	}
	s.Index.Replace(docs)
	span.SetAttributes(attribute.Int("docs", s.Index.Len()))
	return s.Index.Len(), nil
}

// recipeDocument is the searchable text of r: title, description and
// ingredient names.
func recipeDocument(r *domain.Recipe) search.Document {
	parts := make([]string, 0, 2+len(r.Ingredients))
	parts = append(parts, r.Title, r.Description)
	for _, ri := range r.Ingredients {
		parts = append(parts, ri.Ingredient.Name)
	}
	return search.Document{ID: r.ID, Text: strings.Join(parts, "\n")}
}

// normalizeTitle trims whitespace and collapses multiple spaces to one.
func normalizeTitle(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

func clipRunes(s string, n int) string {
	if n > 0 && utf8.RuneCountInString(s) > n {
		return string([]rune(s)[:n])
	}
	return s
}
