package ws

import (
	"github.com/fd1az/dex-monitor/internal/di"
)

// HubToken exposes the shared broadcast hub to other modules.
var HubToken = di.NewToken[*Hub]("server.Hub")

// GetHub returns the hub from the registry.
func GetHub(c di.ServiceRegistry) *Hub {
	return di.GetToken(c, HubToken)
}
