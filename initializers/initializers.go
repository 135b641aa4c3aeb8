package initializers

import (
	"context"
	"procurement-backend/config"
	"procurement-backend/fiberlog"
	attachmenthandler "procurement-backend/lib/attachment"
	pdfexport "procurement-backend/lib/export/pdf"
	xlsexport "procurement-backend/lib/export/xls"
	"procurement-backend/lib/notify"
	pushcleanupworker "procurement-backend/lib/notify/push-cleanup-worker"
	purchasereqhandler "procurement-backend/lib/purchase-req"
	"procurement-backend/lib/rbac"
	requestwizard "procurement-backend/lib/request-wizard"
	"procurement-backend/lib/utils/lock"
	vendorhandler "procurement-backend/lib/dicts/vendors"
	connectionhub "procurement-backend/lib/ws/hub/connection-hub"
)

var LoggerConfig *fiberlog.Config

// InitAllServices порядок важен: обработчики получают зависимости через Instance уже созданных пакетов
func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	SetLogLevel(config.Conf.App.LogLevel)
	InitDBConnection()
	InitS3(ctx)
	InitSmtp()
	connectionhub.Init()
	lock.InitResourceLock(ctx)
	rbac.NewHandler()
	vendorhandler.NewHandler()
	notify.NewHandler()
	purchasereqhandler.NewHandler()
	requestwizard.NewHandler()
	attachmenthandler.NewHandler()
	xlsexport.NewHandler()
	pdfexport.NewHandler()
	// воркеры
	pushcleanupworker.StartWorker(ctx)
}
