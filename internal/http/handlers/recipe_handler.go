// Recipe HTTP handlers.
//
// This file exposes REST endpoints for recipes:
//   - POST /recipe              (create; multipart or JSON, Idempotency-Key aware)
//   - GET  /recipe              (list, optional owner filter, paginated, ETag support)
//   - GET  /recipe/search       (rank public recipes against a query)
//   - GET  /recipe/{id}         (fetch one)
//   - GET  /recipe/{id}/qr      (share link as a PNG QR code)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and the same requester
// already created a recipe with that key, the original recipe is returned
// with 200 and `Idempotency-Replayed: true` instead of 201.
package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-mealplan-backend/internal/http/middleware"
	"github.com/tbourn/go-mealplan-backend/internal/services"
	"github.com/tbourn/go-mealplan-backend/internal/utils"
)

//
// DTOs
//

// CreateRecipeRequest is the JSON form of a recipe submission. Multipart
// submissions use the same field names, with ingredients as a JSON string
// and image as a file part.
type CreateRecipeRequest struct {
	Title        string `json:"title" example:"Shakshuka"`
	Description  string `json:"description" example:"Eggs poached in spiced tomato sauce"`
	Instructions string `json:"instructions" example:"Simmer the sauce, crack in the eggs, cover."`
	OwnerIDRef   string `json:"owner_id_ref" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// IsPublic defaults to true when omitted.
	IsPublic    *bool                      `json:"is_public,omitempty" example:"true"`
	Ingredients []services.IngredientInput `json:"ingredients"`
	// Image is an optional base64-encoded photo.
	Image string `json:"image,omitempty"`
}

// ListRecipesResponse wraps a page of recipes and pagination information.
type ListRecipesResponse struct {
	Recipes    []RecipeView `json:"recipes"`
	Pagination Pagination   `json:"pagination"`
}

// SearchRecipesResponse lists ranked hits.
type SearchRecipesResponse struct {
	Query string               `json:"query"`
	Hits  []services.RecipeHit `json:"hits"`
}

//
// Handlers
//

// CreateRecipe godoc
// @ID          createRecipe
// @Summary     Create a recipe
// @Description Creates a recipe with its ingredient list in one transaction. Accepts multipart/form-data
// @Description (fields title, description, instructions, owner_id_ref, is_public, ingredients as JSON, image file)
// @Description or application/json. Supports idempotency via the Idempotency-Key header.
// @Tags        Recipes
// @Accept      multipart/form-data,json
// @Produce     json
//
// @Param       Authorization    header    string  false "Bearer token"
// @Param       Idempotency-Key  header    string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       title            formData  string  true  "Recipe title"
// @Param       description      formData  string  false "Description"
// @Param       instructions     formData  string  false "Instructions"
// @Param       owner_id_ref     formData  string  false "Owner user id"
// @Param       is_public        formData  bool    false "Listed in search" default(true)
// @Param       ingredients      formData  string  false "JSON array of {name, quantity}"
// @Param       image            formData  file    false "Photo"
//
// @Success     201  {object}  handlers.RecipeView
// @Success     200  {object}  handlers.RecipeView     "Replayed result"
// @Header      200  {string}  Idempotency-Replayed    "true when replayed"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Owner mismatch"
// @Failure     413  {object}  handlers.ErrorResponse  "Upload too large"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /recipe [post]
func (h *Handlers) CreateRecipe(c *gin.Context) {
	var (
		in  services.RecipeInput
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		in, err = recipeFromMultipart(c)
	} else {
		in, err = recipeFromJSON(c)
	}
	if err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "upload too large")
		case errors.Is(err, services.ErrInvalidImage):
			fail(c, http.StatusBadRequest, ErrCodeInvalidImage, "image could not be decoded")
		default:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		}
		return
	}

	owner, allowed := resolveOwner(c, strings.TrimSpace(in.OwnerIDRef))
	if !allowed {
		return
	}
	in.OwnerIDRef = owner
	if key, present := middleware.GetIdempotencyKey(c); present {
		in.IdempotencyKey = key
		in.RequesterID = middleware.RequesterID(c)
	}

	r, replayed, err := h.recipeSvc.Create(c.Request.Context(), in)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
		ok(c, http.StatusOK, toView(r))
		return
	}
	ok(c, http.StatusCreated, toView(r))
}

// ListRecipes godoc
// @ID          listRecipes
// @Summary     List recipes (paginated)
// @Description Returns recipes newest first, only those of owner_id_ref when given.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Recipes
// @Produce     json
//
// @Param       owner_id_ref   query   string  false "Owner filter"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"recipes:*:1:20:3:1717286400000000000\")
// @Param       page           query   int     false "Page number"                 minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"              minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListRecipesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipe [get]
func (h *Handlers) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	owner := strings.TrimSpace(c.Query("owner_id_ref"))
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.recipeSvc.Version(ctx, owner); err == nil {
		key := owner
		if key == "" {
			key = "*"
		}
		key += ":" + strconv.Itoa(page) + ":" + strconv.Itoa(pageSize)
		if checkETag(c, "recipes", key, count, maxTS) {
			return
		}
	}

	items, total, err := h.recipeSvc.List(ctx, owner, page, pageSize)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	ok(c, http.StatusOK, ListRecipesResponse{
		Recipes:    toViews(items),
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetRecipe godoc
// @ID          getRecipe
// @Summary     Get a recipe
// @Tags        Recipes
// @Produce     json
// @Param       id  path  string  true  "Recipe ID (UUID)"  format(uuid)
// @Success     200  {object} handlers.RecipeView
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipe/{id} [get]
func (h *Handlers) GetRecipe(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a UUID")
		return
	}
	r, err := h.recipeSvc.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, toView(r))
}

// SearchRecipes godoc
// @ID          searchRecipes
// @Summary     Search public recipes
// @Description Ranks public recipes by token overlap with q across title, description and ingredient names.
// @Tags        Recipes
// @Produce     json
// @Param       q  query  string  true   "Query"
// @Param       k  query  int     false  "Max hits"  minimum(1) maximum(50) default(10)
// @Success     200  {object} handlers.SearchRecipesResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing query"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipe/search [get]
func (h *Handlers) SearchRecipes(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q required")
		return
	}
	k := utils.Clamp(utils.AtoiDefault(c.Query("k"), 10), 1, 50)

	hits, err := h.recipeSvc.Search(c.Request.Context(), q, k)
	if err != nil {
		failInternal(c, ErrCodeInternal, err)
		return
	}
	ok(c, http.StatusOK, SearchRecipesResponse{Query: q, Hits: hits})
}

// RecipeQR godoc
// @ID          recipeQR
// @Summary     Share QR code
// @Description Returns a PNG QR code encoding the recipe's public link.
// @Tags        Recipes
// @Produce     png
// @Param       id    path   string  true   "Recipe ID (UUID)"  format(uuid)
// @Param       size  query  int     false  "Edge length in pixels"  minimum(64) maximum(1024) default(256)
// @Success     200  {file}   binary
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipe/{id}/qr [get]
func (h *Handlers) RecipeQR(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a UUID")
		return
	}
	size := utils.Clamp(utils.AtoiDefault(c.Query("size"), 256), 64, 1024)

	png, err := h.recipeSvc.ShareQR(c.Request.Context(), id, size)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

//
// Request decoding
//

func recipeFromJSON(c *gin.Context) (services.RecipeInput, error) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return services.RecipeInput{}, err
		}
		return services.RecipeInput{}, errors.New("invalid JSON body")
	}
	in := services.RecipeInput{
		Title:        req.Title,
		Description:  req.Description,
		Instructions: req.Instructions,
		OwnerIDRef:   req.OwnerIDRef,
		IsPublic:     req.IsPublic == nil || *req.IsPublic,
		Ingredients:  req.Ingredients,
	}
	if req.Image != "" {
		raw, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			return services.RecipeInput{}, services.ErrInvalidImage
		}
		in.Image = bytes.NewReader(raw)
	}
	return in, nil
}

func recipeFromMultipart(c *gin.Context) (services.RecipeInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return services.RecipeInput{}, err
		}
		return services.RecipeInput{}, errors.New("invalid multipart body")
	}
	in := services.RecipeInput{
		Title:        formValue(form, "title"),
		Description:  formValue(form, "description"),
		Instructions: formValue(form, "instructions"),
		OwnerIDRef:   formValue(form, "owner_id_ref"),
		IsPublic:     utils.ParseBoolDefault(formValue(form, "is_public"), true),
	}
	if raw := strings.TrimSpace(formValue(form, "ingredients")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Ingredients); err != nil {
			return services.RecipeInput{}, errors.New("ingredients must be a JSON array of {name, quantity}")
		}
	}
	if files := form.File["image"]; len(files) > 0 {
		body, err := readPart(files[0])
		if err != nil {
			return services.RecipeInput{}, err
		}
		in.Image = bytes.NewReader(body)
	}
	return in, nil
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
