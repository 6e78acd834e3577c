package room

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuratFaizulla/mediapleer/internal/domain"
	"github.com/MuratFaizulla/mediapleer/internal/repository/connection/inmemory"
	roomRedis "github.com/MuratFaizulla/mediapleer/internal/repository/room/redis"
)

func newTestService(t *testing.T) *service {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	roomRepo := roomRedis.NewRepo(rc, time.Hour, slog.Default())
	connRepo := inmemory.NewRepo()

	return NewService(roomRepo, connRepo, &Config{CommandHistoryLimit: 100}, slog.Default())
}

func testItem(title string) domain.MediaElement {
	return domain.MediaElement{
		Title: title,
		Src:   []domain.MediaOption{{Src: "https://example.com/" + title + ".mp4"}},
		Sub:   []domain.Subtitle{},
	}
}

func TestJoinRoomCreatesRoom(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn:     &websocket.Conn{},
		RoomId:   "movie-night",
		SocketId: "sock1",
		Ip:       "10.0.0.1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, joinResp.Uid, "a fresh join must be assigned a uid")
	require.NotNil(t, joinResp.Room)
	assert.Equal(t, "movie-night", joinResp.Room.Id)
	assert.Equal(t, joinResp.Uid, joinResp.Room.OwnerId, "the creating user owns the room")
	assert.Len(t, joinResp.Room.Users, 1)
	assert.Len(t, joinResp.Conns, 1)
	assert.True(t, joinResp.Room.TargetState.Paused)
	assert.Equal(t, float64(1), joinResp.Room.TargetState.PlaybackRate)
	assert.NotZero(t, joinResp.Room.ServerTime)
}

func TestJoinRoomSecondUser(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	first, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)

	second, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock2",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.Uid, second.Uid)
	assert.Len(t, second.Room.Users, 2)
	assert.Equal(t, first.Uid, second.Room.OwnerId, "ownership stays with the first user")
	assert.Len(t, second.Conns, 2, "both connections must receive the join broadcast")
}

func TestJoinRoomReconnectKeepsUid(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	first, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)

	again, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock2", Uid: first.Uid,
	})
	require.NoError(t, err)
	assert.Equal(t, first.Uid, again.Uid)
	require.Len(t, again.Room.Users, 1, "a reconnect must not duplicate the user")
	assert.Equal(t, []string{"sock2", "sock1"}, again.Room.Users[0].SocketIds,
		"the newest socket id must come first")
}

func TestTimelineCommands(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)
	uid := joinResp.Uid

	resp, err := service.SetPaused(ctx, &SetPausedParams{RoomId: "room1", SenderId: uid, Paused: false})
	require.NoError(t, err)
	require.NotNil(t, resp.Room)
	assert.False(t, resp.Room.TargetState.Paused)
	assert.Greater(t, resp.Room.TargetState.LastSync, float64(0), "mutating the timeline must bump lastSync")
	assert.Len(t, resp.Conns, 1)

	resp, err = service.Seek(ctx, &SeekParams{RoomId: "room1", SenderId: uid, Progress: 42.5})
	require.NoError(t, err)
	assert.Equal(t, 42.5, resp.Room.TargetState.Progress)

	resp, err = service.SetPlaybackRate(ctx, &SetPlaybackRateParams{RoomId: "room1", SenderId: uid, PlaybackRate: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 1.5, resp.Room.TargetState.PlaybackRate)

	resp, err = service.SetLoop(ctx, &SetLoopParams{RoomId: "room1", SenderId: uid, Loop: true})
	require.NoError(t, err)
	assert.True(t, resp.Room.TargetState.Loop)

	resp, err = service.PlayAgain(ctx, &PlayAgainParams{RoomId: "room1", SenderId: uid})
	require.NoError(t, err)
	assert.Equal(t, float64(0), resp.Room.TargetState.Progress)
	assert.False(t, resp.Room.TargetState.Paused)

	assert.NotEmpty(t, resp.Room.CommandHistory, "mutating commands must be recorded")
	last := resp.Room.CommandHistory[len(resp.Room.CommandHistory)-1]
	assert.Equal(t, domain.CommandPlayAgain, last.Command)
	assert.Equal(t, uid, last.UserId)
}

func TestSetPlaybackRateRejectsNonPositive(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)

	resp, err := service.SetPlaybackRate(ctx, &SetPlaybackRateParams{
		RoomId: "room1", SenderId: joinResp.Uid, PlaybackRate: 0,
	})
	require.NoError(t, err, "a rejected command is a silent no-op, not an error")
	assert.Nil(t, resp.Room, "nothing must be broadcast")

	state, err := service.Fetch(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), state.TargetState.PlaybackRate)
}

func TestSetProgressIsTelemetryOnly(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)
	uid := joinResp.Uid

	before, err := service.Fetch(ctx, "room1")
	require.NoError(t, err)

	resp, err := service.SetProgress(ctx, &SetProgressParams{RoomId: "room1", SenderId: uid, Progress: 33})
	require.NoError(t, err)
	require.NotNil(t, resp.Room)
	assert.Equal(t, float64(33), resp.Room.UserByUid(uid).Player.Progress)
	assert.Equal(t, before.TargetState.Progress, resp.Room.TargetState.Progress,
		"the shared timeline must not move")
	assert.Equal(t, before.TargetState.LastSync, resp.Room.TargetState.LastSync,
		"telemetry must not bump lastSync")
}

func TestUpdatePlaylistAndPlayItem(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)
	uid := joinResp.Uid

	playlist := domain.Playlist{
		Items:        []domain.MediaElement{testItem("a"), testItem("b")},
		CurrentIndex: -1,
	}
	resp, err := service.UpdatePlaylist(ctx, &UpdatePlaylistParams{RoomId: "room1", SenderId: uid, Playlist: playlist})
	require.NoError(t, err)
	require.NotNil(t, resp.Room)
	assert.Len(t, resp.Room.TargetState.Playlist.Items, 2)

	resp, err = service.PlayItemFromPlaylist(ctx, &PlayItemFromPlaylistParams{RoomId: "room1", SenderId: uid, Index: 1})
	require.NoError(t, err)
	require.NotNil(t, resp.Room)
	assert.Equal(t, 1, resp.Room.TargetState.Playlist.CurrentIndex)
	assert.Equal(t, "b", resp.Room.TargetState.Playing.Title)
	assert.Equal(t, float64(0), resp.Room.TargetState.Progress)
}

func TestPlayItemFromPlaylistOutOfRange(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)
	uid := joinResp.Uid

	playlist := domain.Playlist{Items: []domain.MediaElement{testItem("a")}, CurrentIndex: 0}
	_, err = service.UpdatePlaylist(ctx, &UpdatePlaylistParams{RoomId: "room1", SenderId: uid, Playlist: playlist})
	require.NoError(t, err)

	before, err := service.Fetch(ctx, "room1")
	require.NoError(t, err)

	resp, err := service.PlayItemFromPlaylist(ctx, &PlayItemFromPlaylistParams{RoomId: "room1", SenderId: uid, Index: 5})
	require.NoError(t, err)
	assert.Nil(t, resp.Room, "an out-of-range index is dropped without broadcast")

	after, err := service.Fetch(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, before.TargetState, after.TargetState, "state must be untouched")
}

func TestUpdatePlaylistRejectsBadIndex(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)

	resp, err := service.UpdatePlaylist(ctx, &UpdatePlaylistParams{
		RoomId:   "room1",
		SenderId: joinResp.Uid,
		Playlist: domain.Playlist{Items: []domain.MediaElement{testItem("a")}, CurrentIndex: 3},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Room)
}

func TestPlayEndedTransitions(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)
	uid := joinResp.Uid

	playlist := domain.Playlist{Items: []domain.MediaElement{testItem("a"), testItem("b")}, CurrentIndex: -1}
	_, err = service.UpdatePlaylist(ctx, &UpdatePlaylistParams{RoomId: "room1", SenderId: uid, Playlist: playlist})
	require.NoError(t, err)

	// -1 -> 0 -> 1 -> cycle back to 0
	for _, wantIndex := range []int{0, 1, 0} {
		resp, err := service.PlayEnded(ctx, &PlayEndedParams{RoomId: "room1", SenderId: uid})
		require.NoError(t, err)
		require.NotNil(t, resp.Room)
		assert.Equal(t, wantIndex, resp.Room.TargetState.Playlist.CurrentIndex)
		assert.False(t, resp.Room.TargetState.Paused)
	}
}

func TestPlayEndedEmptyPlaylistStops(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)
	uid := joinResp.Uid

	_, err = service.SetProgress(ctx, &SetProgressParams{RoomId: "room1", SenderId: uid, Progress: 87.5})
	require.NoError(t, err)

	resp, err := service.PlayEnded(ctx, &PlayEndedParams{RoomId: "room1", SenderId: uid})
	require.NoError(t, err)
	require.NotNil(t, resp.Room)
	assert.True(t, resp.Room.TargetState.Paused)
	assert.Equal(t, 87.5, resp.Room.TargetState.Progress,
		"the timeline must freeze at the sender's last reported progress")
}

func TestPlayUrl(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)
	uid := joinResp.Uid

	playlist := domain.Playlist{Items: []domain.MediaElement{testItem("a")}, CurrentIndex: 0}
	_, err = service.UpdatePlaylist(ctx, &UpdatePlaylistParams{RoomId: "room1", SenderId: uid, Playlist: playlist})
	require.NoError(t, err)

	resp, err := service.PlayUrl(ctx, &PlayUrlParams{RoomId: "room1", SenderId: uid, Url: "https://youtu.be/abc"})
	require.NoError(t, err)
	require.NotNil(t, resp.Room)
	assert.Equal(t, domain.SourceYouTube, resp.Room.TargetState.Playing.Source)
	assert.Equal(t, "https://youtu.be/abc", resp.Room.TargetState.Playing.OriginalUrl)
	assert.Equal(t, -1, resp.Room.TargetState.Playlist.CurrentIndex,
		"a one-off url drops the playlist selection")
	assert.False(t, resp.Room.TargetState.Paused)

	// malformed urls are dropped without touching the room
	resp, err = service.PlayUrl(ctx, &PlayUrlParams{RoomId: "room1", SenderId: uid, Url: "ftp://nope"})
	require.NoError(t, err)
	assert.Nil(t, resp.Room)
}

func TestUpdateUser(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)
	uid := joinResp.Uid

	name := "alice"
	resp, err := service.UpdateUser(ctx, &UpdateUserParams{RoomId: "room1", SenderId: uid, Name: &name})
	require.NoError(t, err)
	require.NotNil(t, resp.Room)
	assert.Equal(t, "alice", resp.Room.UserByUid(uid).Name)
	assert.Empty(t, resp.Room.UserByUid(uid).Avatar, "an omitted field stays untouched")

	avatar := "cat.png"
	resp, err = service.UpdateUser(ctx, &UpdateUserParams{RoomId: "room1", SenderId: uid, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Room.UserByUid(uid).Name)
	assert.Equal(t, "cat.png", resp.Room.UserByUid(uid).Avatar)
}

func TestFetchIsIdempotent(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)

	_, err = service.Seek(ctx, &SeekParams{RoomId: "room1", SenderId: joinResp.Uid, Progress: 10})
	require.NoError(t, err)

	first, err := service.Fetch(ctx, "room1")
	require.NoError(t, err)
	second, err := service.Fetch(ctx, "room1")
	require.NoError(t, err)

	assert.NotZero(t, first.ServerTime)
	assert.Equal(t, first.TargetState, second.TargetState, "fetch must not mutate room state")
	assert.Equal(t, first.Users, second.Users)
	assert.Equal(t, first.CommandHistory, second.CommandHistory)
}

func TestDisconnectDeletesEmptyRoom(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	conn := &websocket.Conn{}
	_, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: conn, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)

	resp, err := service.Disconnect(ctx, conn)
	require.NoError(t, err)
	assert.True(t, resp.RoomDeleted)
	assert.Nil(t, resp.Room)

	_, err = service.Fetch(ctx, "room1")
	require.Error(t, err, "the room must be gone")
}

func TestDisconnectReassignsOwner(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	ownerConn := &websocket.Conn{}
	first, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: ownerConn, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)

	second, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock2",
	})
	require.NoError(t, err)

	resp, err := service.Disconnect(ctx, ownerConn)
	require.NoError(t, err)
	assert.False(t, resp.RoomDeleted)
	require.NotNil(t, resp.Room)
	require.Len(t, resp.Room.Users, 1)
	assert.Equal(t, second.Uid, resp.Room.OwnerId, "ownership must pass to a remaining user")
	assert.Len(t, resp.Conns, 1)
	assert.NotEqual(t, first.Uid, resp.Room.OwnerId)
}

func TestDisconnectKeepsUserWithOtherSockets(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	conn1 := &websocket.Conn{}
	first, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: conn1, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)

	// same user on a second tab
	conn2 := &websocket.Conn{}
	_, err = service.JoinRoom(ctx, &JoinRoomParams{
		Conn: conn2, RoomId: "room1", SocketId: "sock2", Uid: first.Uid,
	})
	require.NoError(t, err)

	resp, err := service.Disconnect(ctx, conn1)
	require.NoError(t, err)
	assert.False(t, resp.RoomDeleted)
	require.NotNil(t, resp.Room)
	require.Len(t, resp.Room.Users, 1, "the user stays while another socket is live")
	assert.Equal(t, []string{"sock2"}, resp.Room.Users[0].SocketIds)
}

func TestConcurrentCommandsBothLand(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)
	uid := joinResp.Uid

	var wg sync.WaitGroup
	wg.Add(2)
	errs := make(chan error, 2)
	go func() {
		defer wg.Done()
		_, err := service.Seek(ctx, &SeekParams{RoomId: "room1", SenderId: uid, Progress: 42})
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := service.SetPlaybackRate(ctx, &SetPlaybackRateParams{RoomId: "room1", SenderId: uid, PlaybackRate: 1.5})
		errs <- err
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	state, err := service.Fetch(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, float64(42), state.TargetState.Progress, "the seek must not be lost")
	assert.Equal(t, 1.5, state.TargetState.PlaybackRate, "the rate change must not be lost")
}

func TestRandomCommandSequenceKeepsInvariants(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	joinResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		Conn: &websocket.Conn{}, RoomId: "room1", SocketId: "sock1",
	})
	require.NoError(t, err)
	uid := joinResp.Uid

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		switch rng.Intn(7) {
		case 0:
			_, err = service.SetPaused(ctx, &SetPausedParams{RoomId: "room1", SenderId: uid, Paused: rng.Intn(2) == 0})
		case 1:
			_, err = service.Seek(ctx, &SeekParams{RoomId: "room1", SenderId: uid, Progress: rng.Float64() * 1000})
		case 2:
			_, err = service.PlayEnded(ctx, &PlayEndedParams{RoomId: "room1", SenderId: uid})
		case 3:
			_, err = service.PlayItemFromPlaylist(ctx, &PlayItemFromPlaylistParams{RoomId: "room1", SenderId: uid, Index: rng.Intn(5) - 1})
		case 4:
			n := rng.Intn(4)
			items := make([]domain.MediaElement, 0, n)
			for j := 0; j < n; j++ {
				items = append(items, testItem("x"))
			}
			_, err = service.UpdatePlaylist(ctx, &UpdatePlaylistParams{
				RoomId: "room1", SenderId: uid,
				Playlist: domain.Playlist{Items: items, CurrentIndex: rng.Intn(n+2) - 1},
			})
		case 5:
			_, err = service.SetLoop(ctx, &SetLoopParams{RoomId: "room1", SenderId: uid, Loop: rng.Intn(2) == 0})
		case 6:
			_, err = service.SetProgress(ctx, &SetProgressParams{RoomId: "room1", SenderId: uid, Progress: rng.Float64() * 1000})
		}
		require.NoError(t, err, "command %d", i)

		state, err := service.Fetch(ctx, "room1")
		require.NoError(t, err)
		require.NoError(t, state.TargetState.Playlist.Validate(), "command %d broke the playlist invariant", i)
		require.LessOrEqual(t, len(state.CommandHistory), 100)
	}
}
