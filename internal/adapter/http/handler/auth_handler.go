package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	. "tasktracker/internal/adapter/http/helper"
	"tasktracker/internal/adapter/http/middleware"
	. "tasktracker/internal/adapter/http/validation"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/model/request"
	"tasktracker/internal/core/model/response"
	"tasktracker/internal/core/port"
	"tasktracker/internal/core/util"
)

type AuthHandler struct {
	svc          port.AuthService
	tokens       port.TokenIssuer
	secureCookie bool
	cookieMaxAge int
}

func NewAuthHandler(svc port.AuthService, tokens port.TokenIssuer, secureCookie bool, cookieMaxAge int) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		tokens:       tokens,
		secureCookie: secureCookie,
		cookieMaxAge: cookieMaxAge,
	}
}

func (a *AuthHandler) Register(c *gin.Context) {
	params, ok := bindUserRequest(c)

	if !ok {
		return
	}

	user, err := a.svc.Register(c.Request.Context(), &params)

	if err != nil {
		SendServiceError(c, err)
		return
	}

	a.startSession(c, http.StatusCreated, user)
}

func (a *AuthHandler) Login(c *gin.Context) {
	params, ok := bindUserRequest(c)

	if !ok {
		return
	}

	user, err := a.svc.Authenticate(c.Request.Context(), &params)

	if err != nil {
		SendServiceError(c, err)
		return
	}

	a.startSession(c, http.StatusOK, user)
}

func (a *AuthHandler) Logout(c *gin.Context) {
	a.setSessionCookie(c, "", -1)
	c.Status(http.StatusOK)
}

func (a *AuthHandler) CurrentUser(c *gin.Context) {
	userId, _ := middleware.GetUserID(c)

	user, err := a.svc.CurrentUser(c.Request.Context(), userId)

	if errors.Is(err, domain.ErrNotFoundOrUnauthorized) {
		SendUnauthorizedError(c, "Unauthorized request")
		return
	}

	if err != nil {
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, response.UserResponse{ID: user.ID, Username: user.Username})
}

func (a *AuthHandler) startSession(c *gin.Context, status int, user *domain.User) {
	token, err := a.tokens.CreateToken(user.ID)

	if err != nil {
		SendInternalError(c, "Failed to generate access token")
		return
	}

	a.setSessionCookie(c, token, a.cookieMaxAge)

	SendSuccess(c, status, response.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Token:    token,
	})
}

func (a *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, value, maxAge, "/", "", a.secureCookie, true)
}

func bindUserRequest(c *gin.Context) (request.UserRequest, bool) {
	params, err := util.ParamsToMap[request.UserRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return params, false
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return params, false
	}

	return params, true
}
