//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/behave/internal/config"
	"github.com/zeusync/behave/internal/simulator"
)

func InitializeApp(cfg config.Config) (*simulator.App, func(), error) {
	wire.Build(simulator.ProviderSet)
	return nil, nil, nil
}
