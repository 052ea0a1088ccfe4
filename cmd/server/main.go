package main // Entry point package

import (
	"context"
	"log"

	_ "github.com/joho/godotenv/autoload" // load .env before config reads the environment
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/smartnotes/api/internal/config"
	"github.com/smartnotes/api/internal/database"
	"github.com/smartnotes/api/internal/export"
	"github.com/smartnotes/api/internal/handler"
	"github.com/smartnotes/api/internal/middleware"
	"github.com/smartnotes/api/internal/queue"
	"github.com/smartnotes/api/internal/repository"
	"github.com/smartnotes/api/internal/router"
	"github.com/smartnotes/api/internal/service"
	"github.com/smartnotes/api/internal/summarizer"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	notes := repository.NewNoteRepo(db)

	svc := service.NewNoteService(
		notes,
		users,
		summarizer.NewGemini(cfg.GeminiAPIKey, cfg.SummarizeTimeout),
		export.NewChromeRenderer(cfg.ExportTimeout),
		cfg.FrontendURL,
	)
	svc.Events = queue.PublishNoteActivity

	rdb := config.NewRedisClient() // nil disables caching and rate limiting
	shareCache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	svc.InvalidateShare = shareCache.Invalidate

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, router.Handlers{
		Auth:   handler.NewAuthHandler(cfg, users, svc),
		Notes:  handler.NewNoteHandler(svc),
		Share:  handler.NewShareHandler(svc),
		Export: handler.NewExportHandler(svc),
	}, rdb, shareCache)

	// The consumer's reconnect loop never ends on its own; tying it to the
	// server goroutine through the group context lets a listener failure
	// unwind the whole process instead of leaving it alive without HTTP.
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return queue.StartActivityConsumer(ctx)
	})
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		return e.Start(addr)
	})
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
