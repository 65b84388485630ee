package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/http/middleware"
	"github.com/tbourn/farm-dashboard-backend/internal/services"
)

// SignUpRequest is the JSON payload for POST /signup.
type SignUpRequest struct {
	FirstName string  `json:"firstName" example:"Ada"`
	LastName  string  `json:"lastName"  example:"Okafor"`
	Email     string  `json:"email"     example:"ada@example.com"`
	Password  string  `json:"password"  example:"s3cret"`
	Username  *string `json:"username,omitempty" example:"ada"`
}

// SignInRequest is the JSON payload for POST /signin.
type SignInRequest struct {
	Email    string `json:"email"    example:"ada@example.com"`
	Password string `json:"password" example:"s3cret"`
}

// UserResponse is the public shape of a profile. UserID and ID carry the
// same value; both are kept for existing clients.
type UserResponse struct {
	UserID    string `json:"userId"`
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// SignUpResponse is returned by POST /signup.
type SignUpResponse struct {
	Message string `json:"message" example:"User created successfully"`
	UserResponse
}

// SignInResponse is returned by POST /signin.
type SignInResponse struct {
	Message string       `json:"message" example:"Login successful"`
	User    UserResponse `json:"user"`
}

func userResponse(p domain.UserProfile) UserResponse {
	return UserResponse{
		UserID:    p.ID,
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
	}
}

// SignUp godoc
// @ID          signUp
// @Summary     Register a profile
// @Description Creates a current-schema profile plus its legacy credential row. With an Idempotency-Key header, retries of the same request replay the first result.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                  false  "Client retry key"
// @Param       body             body    handlers.SignUpRequest  true   "Sign-up payload"
//
// @Success     201  {object}  handlers.SignUpResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields or email already registered"
// @Failure     422  {object}  handlers.ErrorResponse  "Idempotency-Key reused with a different request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /signup [post]
func (h *Handlers) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	p, replayed, err := h.authSvc.SignUp(c.Request.Context(), key, services.SignUpInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusCreated, SignUpResponse{
		Message:      "User created successfully",
		UserResponse: userResponse(p),
	})
}

// SignIn godoc
// @ID          signIn
// @Summary     Authenticate a profile
// @Description Verifies the legacy credential when present. Profiles that exist only in the current schema are accepted when CURRENT_SIGNIN_ANY_PASSWORD is enabled.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SignInRequest  true  "Sign-in payload"
//
// @Success     200  {object}  handlers.SignInResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /signin [post]
func (h *Handlers) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, err := h.authSvc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, SignInResponse{Message: "Login successful", User: userResponse(p)})
}
