package simulator

import (
	"github.com/google/wire"

	"github.com/zeusync/behave/internal/core/observability/log"
)

// ProviderSet builds an App from a config.Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideWorld,
	ProvideRegistry,
	ProvideManager,
	ProvideDebugServer,
	NewApp,
)
