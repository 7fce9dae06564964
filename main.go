package main

import (
	"context"

	"github.com/dpefoundation/website/config"
	"github.com/dpefoundation/website/models"
	"github.com/dpefoundation/website/routes"
	"github.com/dpefoundation/website/services"
	"github.com/dpefoundation/website/storage"
	"github.com/dpefoundation/website/utils"
	"github.com/dpefoundation/website/web"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync() //nolint:errcheck

	db := config.InitDatabase(models.All()...)

	store, err := storage.New(cfg)
	if err != nil {
		utils.Sugar.Fatalf("init storage: %v", err)
	}

	auth, err := services.NewAdminAuth(cfg)
	if err != nil {
		utils.Sugar.Fatalf("init admin auth: %v", err)
	}
	if !auth.Configured() {
		utils.Sugar.Warn("ADMIN_USERNAME / ADMIN_PASSWORD not set, admin login is disabled")
	}

	site, err := web.LoadSite(cfg.ContentPath)
	if err != nil {
		utils.Sugar.Fatalf("load site content: %v", err)
	}

	r := routes.SetupRouter(db, store, site, auth)

	// Background jobs stop once the server has drained
	ctx, cancel := context.WithCancel(context.Background())
	utils.StartKeepAlive(ctx, cfg.HeartbeatInterval, services.NewHeartbeatService(db).BeatOnly)
	utils.StartOrphanSweeper(ctx, db, store, cfg.OrphanSweepInterval)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r, cancel); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
