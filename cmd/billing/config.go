package main

import (
	"github.com/imobflow/billing/pkg/asaas"
	"github.com/imobflow/billing/pkg/clientip"
	"github.com/imobflow/billing/pkg/httpserver"
	"github.com/imobflow/billing/pkg/locker"
	"github.com/imobflow/billing/pkg/logger"
	"github.com/imobflow/billing/pkg/pg"
	"github.com/imobflow/billing/pkg/qrcode"
	"github.com/imobflow/billing/pkg/redis"
	"github.com/imobflow/billing/pkg/subscription"
)

type appConfig struct {
	Log      logger.Config
	HTTP     httpserver.Config
	ClientIP clientip.Config
	PG       pg.Config
	Redis    redis.Config
	Lock     locker.Config
	Asaas    asaas.Config
	Billing  subscription.Config
	QRCode   qrcode.Config
}
