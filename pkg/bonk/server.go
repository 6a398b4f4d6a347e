package bonk

import "fmt"

// Server is a regional game server. Name is the API hostname prefix;
// latitude, longitude and country are reported when creating rooms.
type Server struct {
	Name      string
	Latitude  float64
	Longitude float64
	Country   string
}

var (
	ServerWarsaw       = Server{"b2warsaw1", 52.2370, 21.0175, "PL"}
	ServerParis        = Server{"b2paris1", 48.8647, 2.3490, "FR"}
	ServerStockholm    = Server{"b2stockholm1", 59.3346, 18.0632, "SE"}
	ServerFrankfurt    = Server{"b2frankfurt1", 50.1109, 8.6821, "DE"}
	ServerAmsterdam    = Server{"b2amsterdam1", 52.3779, 4.8970, "NL"}
	ServerLondon       = Server{"b2london1", 51.5098, -0.1180, "UK"}
	ServerSeoul        = Server{"b2seoul1", 37.5326, 127.0246, "KR"}
	ServerSeattle      = Server{"b2seattle1", 47.6080, -122.3352, "US"}
	ServerSanFrancisco = Server{"b2sanfrancisco1", 37.7740, -122.4312, "US"}
	ServerMississippi  = Server{"b2river1", 35.5147, -89.9125, "US"}
	ServerDallas       = Server{"b2dallas1", 32.7792, -96.8089, "US"}
	ServerNewYork      = Server{"b2ny1", 40.7306, -73.9352, "US"}
	ServerAtlanta      = Server{"b2atlanta1", 33.7537, -84.3863, "US"}
	ServerSydney       = Server{"b2sydney1", -33.8651, 151.2099, "AU"}
	ServerBrazil       = Server{"b2brazil1", -22.9083, -43.1963, "BR"}
)

// Servers lists every known regional server.
var Servers = []Server{
	ServerWarsaw, ServerParis, ServerStockholm, ServerFrankfurt,
	ServerAmsterdam, ServerLondon, ServerSeoul, ServerSeattle,
	ServerSanFrancisco, ServerMississippi, ServerDallas, ServerNewYork,
	ServerAtlanta, ServerSydney, ServerBrazil,
}

// ServerByName resolves a server by its API hostname prefix.
func ServerByName(name string) (Server, error) {
	for _, s := range Servers {
		if s.Name == name {
			return s, nil
		}
	}
	return Server{}, fmt.Errorf("bonk: no server named %q", name)
}

func (s Server) String() string { return s.Name }
