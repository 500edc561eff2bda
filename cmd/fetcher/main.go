package main

import (
	"log"
	"log/slog"
	"os"

	"uptotimenews/internal/binding"
	"uptotimenews/internal/config"
	"uptotimenews/internal/loader"
	"uptotimenews/internal/render"
	"uptotimenews/pkg/news"
)

func main() {

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	client := news.NewMediastackClient(cfg.Endpoint, news.WithTimeout(cfg.HTTPTimeout))

	list := binding.New()
	list.Attach(render.NewTerminal(os.Stdout, list))

	l := loader.New(client, list, loader.WithCommitMode(cfg.CommitMode))

	res := <-l.Start()
	l.Close()

	if res.Err != nil {
		slog.Error("error fetching articles", "source", client.Name(), "error", res.Err)
		os.Exit(1)
	}

	slog.Info("fetch complete", "source", client.Name(), "count", res.Count)
}
