package controller

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/MuratFaizulla/mediapleer/internal/domain"
	"github.com/MuratFaizulla/mediapleer/internal/service/room"
	"github.com/MuratFaizulla/mediapleer/internal/service/upload"
	"github.com/MuratFaizulla/mediapleer/pkg/validator"
	"github.com/MuratFaizulla/mediapleer/pkg/wsrouter"
)

type iRoomService interface {
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	Disconnect(context.Context, *websocket.Conn) (room.DisconnectResponse, error)
	SetPaused(context.Context, *room.SetPausedParams) (room.BroadcastResponse, error)
	SetLoop(context.Context, *room.SetLoopParams) (room.BroadcastResponse, error)
	SetPlaybackRate(context.Context, *room.SetPlaybackRateParams) (room.BroadcastResponse, error)
	SetProgress(context.Context, *room.SetProgressParams) (room.BroadcastResponse, error)
	Seek(context.Context, *room.SeekParams) (room.BroadcastResponse, error)
	PlayAgain(context.Context, *room.PlayAgainParams) (room.BroadcastResponse, error)
	PlayEnded(context.Context, *room.PlayEndedParams) (room.BroadcastResponse, error)
	PlayItemFromPlaylist(context.Context, *room.PlayItemFromPlaylistParams) (room.BroadcastResponse, error)
	UpdatePlaylist(context.Context, *room.UpdatePlaylistParams) (room.BroadcastResponse, error)
	UpdateUser(context.Context, *room.UpdateUserParams) (room.BroadcastResponse, error)
	PlayUrl(context.Context, *room.PlayUrlParams) (room.BroadcastResponse, error)
	Fetch(context.Context, string) (*domain.RoomState, error)
}

type iUploadService interface {
	Save(context.Context, []*multipart.FileHeader) ([]upload.UploadedFile, error)
	Cleanup(context.Context) (int, error)
}

type Config struct {
	UploadsDir string
}

type controller struct {
	roomService   iRoomService
	uploadService iUploadService
	upgrader      websocket.Upgrader
	validate      *validator.Validator
	wsmux         *wsrouter.WSRouter
	writer        *connWriter
	logger        *slog.Logger
	uploadsDir    string
}

func NewController(roomService iRoomService, uploadService iUploadService, cfg *Config, logger *slog.Logger) *controller {
	c := &controller{
		roomService:   roomService,
		uploadService: uploadService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:   validator.NewValidator(),
		writer:     newConnWriter(),
		logger:     logger,
		uploadsDir: cfg.UploadsDir,
	}
	c.wsmux = c.getWSRouter()

	return c
}
