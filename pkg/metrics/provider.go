package metrics

import (
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(NewMetricsServer)

func NewMetricsServer(config MetricsConfig) *Server {
	server := NewServer(config)
	RegisterDomainMetrics(server.GetRegistry())
	RegisterCronMetrics(server.GetRegistry())
	return server
}
