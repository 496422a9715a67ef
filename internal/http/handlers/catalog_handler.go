// Catalog HTTP handlers.
//
// Items and videos are read-only. Both are served on POST, which existing
// clients use, and on GET. The category filter comes from the query string
// or, for POST, an optional JSON body.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CatalogQuery is the optional POST body of the catalog endpoints.
type CatalogQuery struct {
	Category string `json:"category" example:"cookware"`
}

// category reads the filter from ?category= or a JSON body. A body that is
// present but not JSON is rejected.
func category(c *gin.Context) (string, bool) {
	if q := strings.TrimSpace(c.Query("category")); q != "" {
		return q, true
	}
	if c.Request.Method != http.MethodPost || c.Request.ContentLength == 0 {
		return "", true
	}
	var body CatalogQuery
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return "", false
	}
	return strings.TrimSpace(body.Category), true
}

// ListItems godoc
// @ID          listItems
// @Summary     List shop items
// @Tags        Catalog
// @Accept      json
// @Produce     json
// @Param       category  query  string                 false  "Category filter"
// @Param       body      body   handlers.CatalogQuery  false  "Category filter (POST)"
// @Success     200  {array}   domain.CatalogItem
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /items [post]
// @Router      /items [get]
func (h *Handlers) ListItems(c *gin.Context) {
	cat, valid := category(c)
	if !valid {
		return
	}
	items, err := h.catalogSvc.Items(c.Request.Context(), cat)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// ListVideos godoc
// @ID          listVideos
// @Summary     List learning videos
// @Tags        Catalog
// @Accept      json
// @Produce     json
// @Param       category  query  string                 false  "Category filter"
// @Param       body      body   handlers.CatalogQuery  false  "Category filter (POST)"
// @Success     200  {array}   domain.Video
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /videos [post]
// @Router      /videos [get]
func (h *Handlers) ListVideos(c *gin.Context) {
	cat, valid := category(c)
	if !valid {
		return
	}
	videos, err := h.catalogSvc.Videos(c.Request.Context(), cat)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	ok(c, http.StatusOK, videos)
}
