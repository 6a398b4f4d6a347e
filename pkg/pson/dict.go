package pson

// RoomKeys is the static string dictionary shared by the game client and
// server for map and game-state payloads. Index order is part of the wire
// format. The list contains two duplicate strings and two integer entries;
// duplicates resolve to their last index when encoding, and the integer
// entries are only ever produced by decoding.
var RoomKeys = []any{
	"physics", "shapes", "fixtures", "bodies", "bro", "joints", "ppm",
	"lights", "spawns", "lasers", "capZones", "type", "w", "h", "c", "a",
	"v", "l", "s", "sh", "fr", "re", "de", "sn", "fc", "fm", "f", "d",
	"n", "bg", "lv", "av", "ld", "ad", "fr", "bu", "cf", "rv", "p", "d",
	"bf", "ba", "bb", "aa", "ab", "axa", "dr", "em", "mmt", "mms", "ms",
	"ut", "lt", "New body", "Box Shape", "Circle Shape", "Polygon Shape",
	"EdgeChain Shape", "priority", "Light", "Laser", "Cap Zone",
	"BG Shape", "Background Layer", "Rotate Joint", "Slider Joint",
	"Rod Joint", "Gear Joint", int64(65535), int64(16777215),
}
