package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/immxrtalbeast/roomkeeper/internal/api/http/converter"
	"github.com/immxrtalbeast/roomkeeper/internal/identity"
	"github.com/immxrtalbeast/roomkeeper/internal/service"
)

type UserController struct {
	users service.UserInteractor
	log   *slog.Logger
}

func NewUserController(users service.UserInteractor, log *slog.Logger) *UserController {
	if log == nil {
		log = slog.Default()
	}
	return &UserController{users: users, log: log}
}

// EnsureUser creates or refreshes the record of an authenticated caller
// before any handler runs. Anonymous requests pass through untouched.
func (c *UserController) EnsureUser(ctx *gin.Context) {
	caller := identity.Caller(ctx)
	if caller == nil {
		ctx.Next()
		return
	}
	if err := c.users.Ensure(ctx.Request.Context(), caller); err != nil {
		writeError(ctx, c.log, err)
		return
	}
	ctx.Next()
}

func (c *UserController) Profile(ctx *gin.Context) {
	user, err := c.users.GetUser(ctx.Request.Context(), identity.Caller(ctx))
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": converter.UserToApi(user)})
}

func (c *UserController) UpdateProfile(ctx *gin.Context) {
	type request struct {
		DisplayName string `json:"displayName"`
		ProfileURL  string `json:"profileURL"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBody(ctx)
		return
	}

	if err := c.users.UpdateProfile(ctx.Request.Context(), identity.Caller(ctx), req.DisplayName, req.ProfileURL); err != nil {
		writeError(ctx, c.log, err)
		return
	}
	success(ctx, nil)
}
