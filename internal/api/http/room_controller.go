package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/immxrtalbeast/roomkeeper/internal/api/http/converter"
	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/identity"
	"github.com/immxrtalbeast/roomkeeper/internal/service"
	"github.com/immxrtalbeast/roomkeeper/lib/logger/sl"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

type RoomController struct {
	rooms    service.RoomInteractor
	queries  service.RoomQuerier
	feed     *service.RoomListFeed
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewRoomController(rooms service.RoomInteractor, queries service.RoomQuerier, feed *service.RoomListFeed, allowedOrigins []string, log *slog.Logger) *RoomController {
	if log == nil {
		log = slog.Default()
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &RoomController{
		rooms:   rooms,
		queries: queries,
		feed:    feed,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

func (c *RoomController) CreateRoom(ctx *gin.Context) {
	type request struct {
		Name            string `json:"name"`
		AllowURLJoining *bool  `json:"allowUrlJoining"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBody(ctx)
		return
	}

	room, err := c.rooms.CreateRoom(ctx.Request.Context(), identity.Caller(ctx), req.Name, req.AllowURLJoining)
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}
	success(ctx, gin.H{"key": room.ID, "room": converter.RoomToApi(room)})
}

func (c *RoomController) Invite(ctx *gin.Context) {
	type request struct {
		UserToAdd string `json:"userToAdd"`
		Email     string `json:"email"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBody(ctx)
		return
	}

	uid, err := c.rooms.Invite(ctx.Request.Context(), ctx.Param("roomId"), identity.Caller(ctx), service.InviteTarget{
		UID:   req.UserToAdd,
		Email: req.Email,
	})
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}
	success(ctx, gin.H{"uid": uid})
}

func (c *RoomController) AcceptInvite(ctx *gin.Context) {
	c.simple(ctx, c.rooms.AcceptInvite)
}

func (c *RoomController) DeclineInvite(ctx *gin.Context) {
	c.simple(ctx, c.rooms.DeclineInvite)
}

func (c *RoomController) Join(ctx *gin.Context) {
	c.simple(ctx, c.rooms.JoinByURL)
}

func (c *RoomController) Delete(ctx *gin.Context) {
	c.simple(ctx, c.rooms.DeleteRoom)
}

func (c *RoomController) Leave(ctx *gin.Context) {
	deleted, err := c.rooms.Leave(ctx.Request.Context(), ctx.Param("roomId"), identity.Caller(ctx))
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}
	success(ctx, gin.H{"roomDeleted": deleted})
}

func (c *RoomController) Kick(ctx *gin.Context) {
	type request struct {
		UserToKick string `json:"userToKick"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBody(ctx)
		return
	}

	if err := c.rooms.Kick(ctx.Request.Context(), ctx.Param("roomId"), identity.Caller(ctx), req.UserToKick); err != nil {
		writeError(ctx, c.log, err)
		return
	}
	success(ctx, nil)
}

func (c *RoomController) MakeOwner(ctx *gin.Context) {
	type request struct {
		UserToPromote string `json:"userToPromote"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBody(ctx)
		return
	}

	if err := c.rooms.Promote(ctx.Request.Context(), ctx.Param("roomId"), identity.Caller(ctx), req.UserToPromote); err != nil {
		writeError(ctx, c.log, err)
		return
	}
	success(ctx, nil)
}

func (c *RoomController) Rename(ctx *gin.Context) {
	type request struct {
		NewName string `json:"newName"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBody(ctx)
		return
	}

	if err := c.rooms.Rename(ctx.Request.Context(), ctx.Param("roomId"), identity.Caller(ctx), req.NewName); err != nil {
		writeError(ctx, c.log, err)
		return
	}
	success(ctx, nil)
}

func (c *RoomController) UpdateArrived(ctx *gin.Context) {
	type request struct {
		Arrived *bool `json:"arrived"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBody(ctx)
		return
	}
	if req.Arrived == nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing arrived"})
		return
	}

	if err := c.rooms.UpdateArrival(ctx.Request.Context(), ctx.Param("roomId"), identity.Caller(ctx), *req.Arrived); err != nil {
		writeError(ctx, c.log, err)
		return
	}
	success(ctx, nil)
}

func (c *RoomController) RoomData(ctx *gin.Context) {
	view, err := c.queries.RoomView(ctx.Request.Context(), ctx.Param("roomId"), identity.Caller(ctx))
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"room": view})
}

func (c *RoomController) JoinInfo(ctx *gin.Context) {
	info, err := c.queries.JoinInfo(ctx.Request.Context(), ctx.Param("roomId"), identity.Caller(ctx))
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, info)
}

func (c *RoomController) ListRooms(ctx *gin.Context) {
	rooms, err := c.queries.ListRooms(ctx.Request.Context(), identity.Caller(ctx))
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (c *RoomController) Inbox(ctx *gin.Context) {
	invites, err := c.queries.Inbox(ctx.Request.Context(), identity.Caller(ctx))
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"invites": invites})
}

// StreamRooms pushes the caller's room list over a websocket until either
// side goes away.
func (c *RoomController) StreamRooms(ctx *gin.Context) {
	const op = "api.http.rooms.stream"

	caller := identity.Caller(ctx)
	if caller == nil {
		writeError(ctx, c.log, service.ErrUnauthenticated)
		return
	}
	stream, err := c.feed.Open(caller.UID)
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		return
	}
	defer conn.Close()

	log := c.log.With(slog.String("op", op), slog.String("uid", caller.UID))

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := stream.Start(runCtx); err != nil {
		log.Error("failed to start room stream", sl.Err(err))
		return
	}
	defer stream.Stop()

	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	snapshots := stream.Snapshots()
	for {
		select {
		case rooms, ok := <-snapshots:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(gin.H{"type": "rooms", "rooms": rooms}); err != nil {
				log.Debug("room stream closed", sl.Err(err))
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type roomAction func(ctx context.Context, roomID string, caller *domain.Caller) error

func (c *RoomController) simple(ctx *gin.Context, action roomAction) {
	if err := action(ctx.Request.Context(), ctx.Param("roomId"), identity.Caller(ctx)); err != nil {
		writeError(ctx, c.log, err)
		return
	}
	success(ctx, nil)
}
