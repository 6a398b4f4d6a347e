package api

import "fmt"

// BaseURL is the web backend all script endpoints hang off.
const BaseURL = "https://bonk2.io"

const scripts = BaseURL + "/scripts"

// Script endpoints. Every call is a form POST returning JSON with an
// "r" result field; "fail" carries an error code in "e".
const (
	EndpointLoginLegacy       = scripts + "/login_legacy.php"
	EndpointLoginAuto         = scripts + "/login_auto.php"
	EndpointGetRooms          = scripts + "/getrooms.php"
	EndpointGetFriends        = scripts + "/friends.php"
	EndpointMatchmakingServer = scripts + "/matchmaking_query.php"
	EndpointGetRoomAddress    = scripts + "/getroomaddress.php"
	EndpointGetOwnMaps        = scripts + "/map_getown.php"
	EndpointAutoJoin          = scripts + "/autojoin.php"
)

// SocketURL returns the websocket origin of a game server.
func SocketURL(serverName string) string {
	return fmt.Sprintf("https://%s.bonk.io", serverName)
}

// PeerHost returns the peer signalling host of a game server.
func PeerHost(serverName string) string {
	return fmt.Sprintf("%s.bonk.io", serverName)
}

// RoomLink builds a shareable join link from a room id and an optional
// bypass code.
func RoomLink(roomID string, bypass string) string {
	return fmt.Sprintf("https://bonk.io/%s%s", roomID, bypass)
}
