package transaction

import (
	"github.com/smallbiznis/gatepass/internal/transaction/repository"
	"github.com/smallbiznis/gatepass/internal/transaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction.store",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
