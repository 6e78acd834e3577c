package connection

// Client is what the registry knows about one live connection.
type Client struct {
	RoomId   string
	Uid      string
	SocketId string
}
