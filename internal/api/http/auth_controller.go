package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/identity"
	"github.com/immxrtalbeast/roomkeeper/internal/repository"
	"github.com/immxrtalbeast/roomkeeper/lib/logger/sl"
)

// AuthController manages the session cookie. Issuing sessions from a bare
// uid is a development identity provider and is only mounted when enabled.
type AuthController struct {
	issuer     *identity.Issuer
	cookieName string
	ttl        time.Duration
	secure     bool
	log        *slog.Logger
}

func NewAuthController(issuer *identity.Issuer, cookieName string, ttl time.Duration, secure bool, log *slog.Logger) *AuthController {
	if log == nil {
		log = slog.Default()
	}
	return &AuthController{
		issuer:     issuer,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		log:        log,
	}
}

func (c *AuthController) CreateSession(ctx *gin.Context) {
	type request struct {
		UID           string `json:"uid"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBody(ctx)
		return
	}
	req.UID = strings.TrimSpace(req.UID)
	if !repository.ValidID(req.UID) {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "uid is required"})
		return
	}

	token, err := c.issuer.Issue(domain.Caller{
		UID:           req.UID,
		Email:         strings.TrimSpace(req.Email),
		Role:          domain.DefaultUserRole,
		EmailVerified: req.EmailVerified,
	}, c.ttl)
	if err != nil {
		c.log.Error("failed to issue session", sl.Err(err))
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	identity.SetSession(ctx, c.cookieName, token, int(c.ttl.Seconds()), c.secure)
	success(ctx, gin.H{"token": token})
}

func (c *AuthController) Logout(ctx *gin.Context) {
	identity.ClearSession(ctx, c.cookieName)
	success(ctx, nil)
}
