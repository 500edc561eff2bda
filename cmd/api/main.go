package main

import (
	"log"
	"log/slog"
	"os"

	"uptotimenews/db"
	"uptotimenews/internal/binding"
	"uptotimenews/internal/config"
	"uptotimenews/internal/handler"
	"uptotimenews/internal/loader"
	"uptotimenews/internal/middleware"
	"uptotimenews/pkg/news"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	list := binding.New()

	if cfg.RedisURL != "" {
		err = db.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		defer db.CloseRedis()

		list.Attach(db.NewChangePublisher(db.Redis, list))
	}

	client := news.NewMediastackClient(cfg.Endpoint, news.WithTimeout(cfg.HTTPTimeout))
	feedLoader := loader.New(client, list, loader.WithCommitMode(cfg.CommitMode))
	defer feedLoader.Close()

	// The list is filled once when the screen comes up.
	feedLoader.Start()

	articleHandler := handler.NewArticleHandler(list, feedLoader)
	refreshLimiter := middleware.NewRateLimiter(cfg.RefreshRPS, cfg.RefreshBurst)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/articles", articleHandler.GetArticles)
	r.GET("/articles/:index", articleHandler.GetArticle)
	r.GET("/state", articleHandler.GetState)
	r.POST("/refresh", refreshLimiter.Middleware(), articleHandler.Refresh)
	r.GET("/health", articleHandler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	err = r.Run(":" + cfg.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
