// Saved recipe HTTP handlers.
//
//   - POST   /saveRecipe                          (bookmark; repeat saves are no-ops)
//   - GET    /saveRecipe?owner_id=                (list the owner's saved recipes)
//   - DELETE /saveRecipe/{owner_id}/{recipe_id}   (remove bookmark)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SaveRecipeRequest is the JSON payload for bookmarking a recipe.
type SaveRecipeRequest struct {
	// OwnerID defaults to the authenticated user.
	OwnerID  string `json:"owner_id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	RecipeID string `json:"recipe_id" binding:"required" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
}

// SaveRecipe godoc
// @ID          saveRecipe
// @Summary     Save a recipe
// @Description Adds the recipe to the owner's saved list. Returns 201 on the first save and 200 with
// @Description the existing bookmark afterwards.
// @Tags        Saved
// @Accept      json
// @Produce     json
// @Param       Authorization  header  string  false "Bearer token"
// @Param       body           body    handlers.SaveRecipeRequest  true  "Bookmark"
// @Success     201  {object}  domain.SavedRecipe
// @Success     200  {object}  domain.SavedRecipe  "Already saved"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Owner mismatch"
// @Failure     404  {object}  handlers.ErrorResponse  "Recipe not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /saveRecipe [post]
func (h *Handlers) SaveRecipe(c *gin.Context) {
	var req SaveRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe_id required")
		return
	}
	owner, allowed := resolveOwner(c, strings.TrimSpace(req.OwnerID))
	if !allowed {
		return
	}

	saved, created, err := h.savedSvc.Save(c.Request.Context(), owner, req.RecipeID)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ok(c, status, saved)
}

// ListSaved godoc
// @ID          listSaved
// @Summary     List saved recipes
// @Tags        Saved
// @Produce     json
// @Param       owner_id  query  string  true  "Owner id"
// @Success     200  {array}   handlers.RecipeView
// @Failure     400  {object}  handlers.ErrorResponse  "Missing owner_id"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /saveRecipe [get]
func (h *Handlers) ListSaved(c *gin.Context) {
	items, err := h.savedSvc.List(c.Request.Context(), c.Query("owner_id"))
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, toViews(items))
}

// RemoveSaved godoc
// @ID          removeSaved
// @Summary     Remove a saved recipe
// @Tags        Saved
// @Param       Authorization  header  string  false "Bearer token"
// @Param       owner_id   path  string  true  "Owner id"
// @Param       recipe_id  path  string  true  "Recipe id"
// @Success     204  {string}  string "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Owner mismatch"
// @Failure     404  {object}  handlers.ErrorResponse  "Not saved"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /saveRecipe/{owner_id}/{recipe_id} [delete]
func (h *Handlers) RemoveSaved(c *gin.Context) {
	owner, allowed := resolveOwner(c, c.Param("owner_id"))
	if !allowed {
		return
	}
	if err := h.savedSvc.Remove(c.Request.Context(), owner, c.Param("recipe_id")); err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}
