package bonk

// Friend is one entry of an account's friend list. RoomID is non-zero
// only while the friend is in a joinable room.
type Friend struct {
	Name   string
	DBID   int
	RoomID int
}
