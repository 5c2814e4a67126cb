package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/repository"
)

func TestCreateRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "u1")

	room, err := f.svc.CreateRoom(ctx, caller("u1"), "  Trip  ", nil)
	require.NoError(t, err)
	assert.Len(t, room.ID, 16)

	stored := f.room(t, room.ID)
	assert.Equal(t, "Trip", stored.Name)
	assert.True(t, stored.AllowURLJoining)
	assert.Equal(t, []string{"u1"}, stored.Owners())
	assert.Equal(t, []string{"created the room"}, actions(stored))
	assert.True(t, testClock.Equal(stored.Logs[0].Timestamp))
	assert.Equal(t, "u1", stored.Logs[0].PerformerID)
	assert.Empty(t, stored.Logs[0].SubjectID)

	assert.Equal(t, domain.RoleOwner, f.user(t, "u1").Rooms[room.ID])
	f.checkInvariants(t, room.ID)

	closed := false
	room, err = f.svc.CreateRoom(ctx, caller("u1"), "Private", &closed)
	require.NoError(t, err)
	assert.False(t, f.room(t, room.ID).AllowURLJoining)
}

func TestCreateRoomValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateRoom(context.Background(), nil, "Trip", nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.svc.CreateRoom(context.Background(), caller("u1"), "   ", nil)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestCreateRoomSkipsTakenIDs(t *testing.T) {
	f := newFixture(t)
	f.seedUsers(t, "u1")

	taken := f.createRoom(t, "u1", "First")
	ids := []string{taken, "feedfacefeedface"}
	f.svc.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	room, err := f.svc.CreateRoom(context.Background(), caller("u1"), "Second", nil)
	require.NoError(t, err)
	assert.Equal(t, "feedfacefeedface", room.ID)
	assert.Equal(t, "First", f.room(t, taken).Name)
}

func TestInviteAcceptScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "u1", "u2")

	roomID := f.createRoom(t, "u1", "Trip")

	invitee, err := f.svc.Invite(ctx, roomID, caller("u1"), InviteTarget{UID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, "u2", invitee)
	assert.Equal(t, []string{roomID}, f.user(t, "u2").PendingInvites)
	assert.Equal(t, domain.RoleInvited, f.room(t, roomID).Members["u2"].Role)
	f.checkInvariants(t, roomID)

	require.NoError(t, f.svc.AcceptInvite(ctx, roomID, caller("u2")))

	room := f.room(t, roomID)
	assert.Equal(t, domain.RoleOwner, room.Members["u1"].Role)
	assert.Equal(t, domain.RoleMember, room.Members["u2"].Role)
	assert.Len(t, room.Members, 2)
	assert.NotContains(t, f.user(t, "u2").PendingInvites, roomID)
	assert.Equal(t, []string{"created the room", "accepted the invite and joined the room"}, actions(room))
	f.checkInvariants(t, roomID)
}

func TestInviteKeepsOtherPendingInvites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "u1", "u2")

	first := f.createRoom(t, "u1", "First")
	second := f.createRoom(t, "u1", "Second")

	_, err := f.svc.Invite(ctx, first, caller("u1"), InviteTarget{UID: "u2"})
	require.NoError(t, err)
	_, err = f.svc.Invite(ctx, second, caller("u1"), InviteTarget{UID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, f.user(t, "u2").PendingInvites)

	require.NoError(t, f.svc.DeclineInvite(ctx, first, caller("u2")))
	assert.Equal(t, []string{second}, f.user(t, "u2").PendingInvites)
}

func TestInviteByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "u1")
	require.NoError(t, f.users.Ensure(ctx, domain.Caller{UID: "u2", Email: "Friend@Example.com"}))

	roomID := f.createRoom(t, "u1", "Trip")

	invitee, err := f.svc.Invite(ctx, roomID, caller("u1"), InviteTarget{Email: " friend@example.COM "})
	require.NoError(t, err)
	assert.Equal(t, "u2", invitee)
	assert.Contains(t, f.user(t, "u2").PendingInvites, roomID)
}

func TestInviteFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "u1", "u2", "u3")

	roomID := f.createRoom(t, "u1", "Trip")
	_, err := f.svc.Invite(ctx, roomID, caller("u1"), InviteTarget{UID: "u2"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		caller *domain.Caller
		roomID string
		target InviteTarget
		want   error
	}{
		{name: "no caller", caller: nil, roomID: roomID, target: InviteTarget{UID: "u3"}, want: ErrUnauthenticated},
		{name: "missing room id", caller: caller("u1"), roomID: "", target: InviteTarget{UID: "u3"}, want: ErrBadRequest},
		{name: "unknown room", caller: caller("u1"), roomID: "nope", target: InviteTarget{UID: "u3"}, want: ErrNotFound},
		{name: "invited caller", caller: caller("u2"), roomID: roomID, target: InviteTarget{UID: "u3"}, want: ErrForbidden},
		{name: "outsider caller", caller: caller("u3"), roomID: roomID, target: InviteTarget{UID: "u3"}, want: ErrForbidden},
		{name: "no target", caller: caller("u1"), roomID: roomID, target: InviteTarget{}, want: ErrBadRequest},
		{name: "unknown uid", caller: caller("u1"), roomID: roomID, target: InviteTarget{UID: "ghost"}, want: ErrNotFound},
		{name: "unknown email", caller: caller("u1"), roomID: roomID, target: InviteTarget{Email: "ghost@example.com"}, want: ErrBadRequest},
		{name: "already invited", caller: caller("u1"), roomID: roomID, target: InviteTarget{UID: "u2"}, want: ErrForbidden},
		{name: "owner themselves", caller: caller("u1"), roomID: roomID, target: InviteTarget{UID: "u1"}, want: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Invite(ctx, tt.roomID, tt.caller, tt.target)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, []string{roomID}, f.user(t, "u2").PendingInvites)
	assert.Empty(t, f.user(t, "u3").PendingInvites)
	f.checkInvariants(t, roomID)
}

func TestAcceptAndDeclineRequireInvitedRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "owner", "member", "outsider")

	roomID := f.createRoom(t, "owner", "Trip")
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("member")))

	for _, uid := range []string{"owner", "member", "outsider"} {
		t.Run(uid, func(t *testing.T) {
			assert.ErrorIs(t, f.svc.AcceptInvite(ctx, roomID, caller(uid)), ErrForbidden)
			assert.ErrorIs(t, f.svc.DeclineInvite(ctx, roomID, caller(uid)), ErrForbidden)
		})
	}
	f.checkInvariants(t, roomID)
}

func TestDeclineInvite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "u1", "u2")

	roomID := f.createRoom(t, "u1", "Trip")
	_, err := f.svc.Invite(ctx, roomID, caller("u1"), InviteTarget{UID: "u2"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeclineInvite(ctx, roomID, caller("u2")))

	room := f.room(t, roomID)
	_, present := room.Member("u2")
	assert.False(t, present)
	assert.Empty(t, f.user(t, "u2").PendingInvites)
	assert.NotContains(t, f.user(t, "u2").Rooms, roomID)
	assert.Equal(t, []string{"created the room", "declined the invite"}, actions(room))
	f.checkInvariants(t, roomID)
}

func TestJoinByURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "u1", "u2", "u3")

	roomID := f.createRoom(t, "u1", "Trip")

	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("u3")))
	room := f.room(t, roomID)
	assert.Equal(t, domain.RoleMember, room.Members["u3"].Role)
	assert.Equal(t, "joined the room via link", room.Logs[len(room.Logs)-1].Action)
	f.checkInvariants(t, roomID)

	assert.ErrorIs(t, f.svc.JoinByURL(ctx, roomID, caller("u3")), ErrForbidden)
	assert.ErrorIs(t, f.svc.JoinByURL(ctx, roomID, caller("u1")), ErrForbidden)
	assert.ErrorIs(t, f.svc.JoinByURL(ctx, roomID, nil), ErrUnauthenticated)
	assert.ErrorIs(t, f.svc.JoinByURL(ctx, "missing", caller("u2")), ErrNotFound)

	_, err := f.svc.Invite(ctx, roomID, caller("u1"), InviteTarget{UID: "u2"})
	require.NoError(t, err)
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("u2")))
	assert.Equal(t, domain.RoleMember, f.room(t, roomID).Members["u2"].Role)
	assert.Empty(t, f.user(t, "u2").PendingInvites)
	f.checkInvariants(t, roomID)
}

func TestJoinByURLDisabled(t *testing.T) {
	f := newFixture(t)
	f.seedUsers(t, "u1", "u2")

	closed := false
	room, err := f.svc.CreateRoom(context.Background(), caller("u1"), "Closed", &closed)
	require.NoError(t, err)

	err = f.svc.JoinByURL(context.Background(), room.ID, caller("u2"))
	assert.ErrorIs(t, err, ErrForbidden)
	_, present := f.room(t, room.ID).Member("u2")
	assert.False(t, present)
}

func TestKickBeforeAcceptKeepsPendingInvite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "u1", "u2")

	roomID := f.createRoom(t, "u1", "Trip")
	_, err := f.svc.Invite(ctx, roomID, caller("u1"), InviteTarget{UID: "u2"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Kick(ctx, roomID, caller("u1"), "u2"))

	room := f.room(t, roomID)
	_, present := room.Member("u2")
	assert.False(t, present)
	assert.NotContains(t, f.user(t, "u2").Rooms, roomID)
	assert.Equal(t, []string{roomID}, f.user(t, "u2").PendingInvites)

	last := room.Logs[len(room.Logs)-1]
	assert.Equal(t, "kicked user", last.Action)
	assert.Equal(t, "u1", last.PerformerID)
	assert.Equal(t, "u2", last.SubjectID)

	assert.ErrorIs(t, f.svc.AcceptInvite(ctx, roomID, caller("u2")), ErrForbidden)
	f.checkInvariants(t, roomID)
}

func TestKickFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "owner", "co", "member", "outsider")

	roomID := f.createRoom(t, "owner", "Trip")
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("co")))
	require.NoError(t, f.svc.Promote(ctx, roomID, caller("owner"), "co"))
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("member")))

	tests := []struct {
		name   string
		caller string
		target string
		want   error
	}{
		{name: "owner kicks themselves", caller: "owner", target: "owner", want: ErrForbidden},
		{name: "member kicks themselves", caller: "member", target: "member", want: ErrForbidden},
		{name: "member kicks owner", caller: "member", target: "owner", want: ErrForbidden},
		{name: "owner kicks non member", caller: "owner", target: "outsider", want: ErrForbidden},
		{name: "owner kicks nobody", caller: "owner", target: "", want: ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.svc.Kick(ctx, roomID, caller(tt.caller), tt.target), tt.want)
		})
	}

	require.NoError(t, f.svc.Kick(ctx, roomID, caller("co"), "owner"))
	assert.Equal(t, []string{"co"}, f.room(t, roomID).Owners())
	f.checkInvariants(t, roomID)
}

func TestPromote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "owner", "member", "invited", "outsider")

	roomID := f.createRoom(t, "owner", "Trip")
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("member")))
	_, err := f.svc.Invite(ctx, roomID, caller("owner"), InviteTarget{UID: "invited"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		caller string
		target string
		want   error
	}{
		{name: "self", caller: "owner", target: "owner", want: ErrForbidden},
		{name: "invited target", caller: "owner", target: "invited", want: ErrForbidden},
		{name: "absent target", caller: "owner", target: "outsider", want: ErrForbidden},
		{name: "member caller", caller: "member", target: "invited", want: ErrForbidden},
		{name: "missing target", caller: "owner", target: " ", want: ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.svc.Promote(ctx, roomID, caller(tt.caller), tt.target), tt.want)
		})
	}

	require.NoError(t, f.svc.Promote(ctx, roomID, caller("owner"), "member"))
	room := f.room(t, roomID)
	assert.Equal(t, []string{"member", "owner"}, room.Owners())
	assert.Equal(t, domain.RoleOwner, f.user(t, "member").Rooms[roomID])
	assert.Equal(t, "promoted user", room.Logs[len(room.Logs)-1].Action)

	assert.ErrorIs(t, f.svc.Promote(ctx, roomID, caller("owner"), "member"), ErrForbidden)
	f.checkInvariants(t, roomID)
}

func TestPromoteKeepsArrival(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "owner", "member")

	roomID := f.createRoom(t, "owner", "Trip")
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("member")))
	require.NoError(t, f.svc.UpdateArrival(ctx, roomID, caller("member"), true))
	require.NoError(t, f.svc.Promote(ctx, roomID, caller("owner"), "member"))

	assert.True(t, f.room(t, roomID).Members["member"].Arrived)
}

func TestLeaveSoleOwnerDeletesRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "owner", "member", "invited")

	roomID := f.createRoom(t, "owner", "Trip")
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("member")))
	_, err := f.svc.Invite(ctx, roomID, caller("owner"), InviteTarget{UID: "invited"})
	require.NoError(t, err)

	deleted, err := f.svc.Leave(ctx, roomID, caller("owner"))
	require.NoError(t, err)
	assert.True(t, deleted)

	f.roomGone(t, roomID)
	f.checkInvariants(t, roomID)
	assert.Empty(t, f.user(t, "invited").PendingInvites)
}

func TestLeaveWithAnotherOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "owner", "co", "member")

	roomID := f.createRoom(t, "owner", "Trip")
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("co")))
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("member")))
	require.NoError(t, f.svc.Promote(ctx, roomID, caller("owner"), "co"))

	deleted, err := f.svc.Leave(ctx, roomID, caller("owner"))
	require.NoError(t, err)
	assert.False(t, deleted)

	room := f.room(t, roomID)
	assert.Equal(t, []string{"co"}, room.Owners())
	assert.Equal(t, domain.RoleMember, room.Members["member"].Role)
	assert.Len(t, room.Members, 2)
	assert.Equal(t, "left the room", room.Logs[len(room.Logs)-1].Action)
	assert.NotContains(t, f.user(t, "owner").Rooms, roomID)
	f.checkInvariants(t, roomID)
}

func TestLeaveAsMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "owner", "member", "invited", "outsider")

	roomID := f.createRoom(t, "owner", "Trip")
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("member")))
	_, err := f.svc.Invite(ctx, roomID, caller("owner"), InviteTarget{UID: "invited"})
	require.NoError(t, err)

	deleted, err := f.svc.Leave(ctx, roomID, caller("member"))
	require.NoError(t, err)
	assert.False(t, deleted)
	_, present := f.room(t, roomID).Member("member")
	assert.False(t, present)

	_, err = f.svc.Leave(ctx, roomID, caller("invited"))
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Leave(ctx, roomID, caller("outsider"))
	assert.ErrorIs(t, err, ErrForbidden)
	f.checkInvariants(t, roomID)
}

func TestRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "owner", "member")

	roomID := f.createRoom(t, "owner", "Trip")
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("member")))

	assert.ErrorIs(t, f.svc.Rename(ctx, roomID, caller("owner"), "  "), ErrBadRequest)
	assert.ErrorIs(t, f.svc.Rename(ctx, roomID, caller("member"), "Mine"), ErrForbidden)

	require.NoError(t, f.svc.Rename(ctx, roomID, caller("owner"), "Road trip"))
	room := f.room(t, roomID)
	assert.Equal(t, "Road trip", room.Name)
	assert.Equal(t, `renamed the room to "Road trip"`, room.Logs[len(room.Logs)-1].Action)
	assert.Len(t, room.Members, 2)
	f.checkInvariants(t, roomID)
}

func TestUpdateArrival(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "owner", "member", "invited")

	roomID := f.createRoom(t, "owner", "Trip")
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("member")))
	_, err := f.svc.Invite(ctx, roomID, caller("owner"), InviteTarget{UID: "invited"})
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateArrival(ctx, roomID, caller("member"), true))
	room := f.room(t, roomID)
	assert.True(t, room.Members["member"].Arrived)
	assert.Equal(t, domain.RoleMember, room.Members["member"].Role)
	assert.Equal(t, "marked themselves as arrived", room.Logs[len(room.Logs)-1].Action)

	require.NoError(t, f.svc.UpdateArrival(ctx, roomID, caller("member"), false))
	assert.False(t, f.room(t, roomID).Members["member"].Arrived)

	assert.ErrorIs(t, f.svc.UpdateArrival(ctx, roomID, caller("invited"), true), ErrForbidden)
	f.checkInvariants(t, roomID)
}

func TestDeleteRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "owner", "member", "invited")

	roomID := f.createRoom(t, "owner", "Trip")
	require.NoError(t, f.svc.JoinByURL(ctx, roomID, caller("member")))
	_, err := f.svc.Invite(ctx, roomID, caller("owner"), InviteTarget{UID: "invited"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteRoom(ctx, roomID, caller("member")), ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteRoom(ctx, roomID, caller("invited")), ErrForbidden)

	require.NoError(t, f.svc.DeleteRoom(ctx, roomID, caller("owner")))
	f.roomGone(t, roomID)
	f.checkInvariants(t, roomID)

	assert.ErrorIs(t, f.svc.DeleteRoom(ctx, roomID, caller("owner")), ErrNotFound)
}

func TestNumericUserIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "0", "1")

	roomID := f.createRoom(t, "0", "Trip")
	assert.Equal(t, []string{"0"}, f.room(t, roomID).Owners())

	invitee, err := f.svc.Invite(ctx, roomID, caller("0"), InviteTarget{Email: "1@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "1", invitee)
	require.NoError(t, f.svc.AcceptInvite(ctx, roomID, caller("1")))

	view, err := f.queries.RoomView(ctx, roomID, caller("1"))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, view.Role)
	require.Len(t, view.Owners, 1)
	assert.Equal(t, "0", view.Owners[0].UID)
	assert.Len(t, view.Members, 2)
	f.checkInvariants(t, roomID)

	require.NoError(t, f.svc.DeleteRoom(ctx, roomID, caller("0")))
	f.roomGone(t, roomID)
	f.checkInvariants(t, roomID)
	assert.Empty(t, f.user(t, "0").Rooms)
}

func TestAuditFailureDoesNotUndoChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "u1", "u2")

	svc := NewRoomService(f.store, failingSaves{f.rooms}, f.users, discardLogger())
	room, err := svc.CreateRoom(ctx, caller("u1"), "Trip", nil)
	require.NoError(t, err)

	_, err = svc.Invite(ctx, room.ID, caller("u1"), InviteTarget{UID: "u2"})
	require.NoError(t, err)
	require.NoError(t, svc.AcceptInvite(ctx, room.ID, caller("u2")))

	stored := f.room(t, room.ID)
	assert.Equal(t, domain.RoleMember, stored.Members["u2"].Role)
	assert.Equal(t, []string{"created the room"}, actions(stored))
	f.checkInvariants(t, room.ID)
}

func TestOwnerInvariantAcrossWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUsers(t, "a", "b", "c", "d")

	roomID := f.createRoom(t, "a", "Trip")

	steps := []func() error{
		func() error { _, err := f.svc.Invite(ctx, roomID, caller("a"), InviteTarget{UID: "b"}); return err },
		func() error { return f.svc.AcceptInvite(ctx, roomID, caller("b")) },
		func() error { return f.svc.JoinByURL(ctx, roomID, caller("c")) },
		func() error { return f.svc.Promote(ctx, roomID, caller("a"), "b") },
		func() error { _, err := f.svc.Invite(ctx, roomID, caller("b"), InviteTarget{UID: "d"}); return err },
		func() error { return f.svc.Kick(ctx, roomID, caller("b"), "c") },
		func() error { _, err := f.svc.Leave(ctx, roomID, caller("a")); return err },
		func() error { return f.svc.DeclineInvite(ctx, roomID, caller("d")) },
		func() error { return f.svc.Rename(ctx, roomID, caller("b"), "Solo") },
	}

	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		f.checkInvariants(t, roomID)
	}

	room := f.room(t, roomID)
	assert.Equal(t, []string{"b"}, room.Owners())
	assert.Len(t, room.Members, 1)
	assert.Empty(t, f.user(t, "d").PendingInvites)

	_, err := f.rooms.Get(ctx, "bad/id")
	assert.ErrorIs(t, err, repository.ErrInvalidID)
}
