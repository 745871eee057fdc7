package hub

// Event names for server and channel list traffic. Chat message traffic uses
// the chat key itself as the event name, see ChatKey.
const (
	ServerDeleted  = "ServerDeleted"
	ServerModified = "ServerModified"

	ChannelCreated  = "ChannelCreated"
	ChannelDeleted  = "ChannelDeleted"
	ChannelModified = "ChannelModified"
)
