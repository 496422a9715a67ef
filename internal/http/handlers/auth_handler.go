// Account HTTP handlers.
//
//   - POST /register   (create user, returns its id)
//   - POST /login      (check credentials, returns id and session token)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Name  string `json:"name" example:"Ada"`
	Email string `json:"email" example:"ada@example.com"`
	// PassHash is the client-side digest of the password.
	PassHash string `json:"pass_hash" example:"5e884898da28047151d0e56f8dc62927"`
}

// RegisterResponse carries the id of the new user.
type RegisterResponse struct {
	ID string `json:"id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" example:"ada@example.com"`
	PassHash string `json:"pass_hash" example:"5e884898da28047151d0e56f8dc62927"`
}

// LoginResponse carries the stored user id and a bearer token.
type LoginResponse struct {
	ID    string `json:"id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// Register godoc
// @ID          register
// @Summary     Register a user
// @Description Creates an account. The email is case-folded and must be unused.
// @Tags        Accounts
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RegisterRequest  true  "Account"
// @Success     201  {object}  handlers.RegisterResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing email or pass_hash"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	u, err := h.authSvc.Register(c.Request.Context(), req.Name, req.Email, req.PassHash)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, RegisterResponse{ID: u.ID})
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies email and pass_hash and returns the user id with a bearer token.
// @Tags        Accounts
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing email or pass_hash"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	u, token, err := h.authSvc.Login(c.Request.Context(), req.Email, req.PassHash)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, LoginResponse{ID: u.ID, Token: token})
}
