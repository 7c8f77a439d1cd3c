package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/weitinglin/tingxie/internal/config"
	"github.com/weitinglin/tingxie/internal/practice"
	"github.com/weitinglin/tingxie/internal/storage"
	"github.com/weitinglin/tingxie/internal/web"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := storage.Open(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()
	log.Printf("Database opened successfully: %s", cfg.DB)

	svc := practice.New(store, practice.DatasetConfig{
		File: cfg.Dataset.File,
		Repo: cfg.Dataset.Repo,
		Dir:  cfg.Dataset.Dir,
	})
	if err := svc.SyncDataset(); err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	if cfg.Dataset.Sync > 0 {
		if err := svc.StartAutoSync(time.Duration(cfg.Dataset.Sync) * time.Second); err != nil {
			log.Fatalf("Failed to start dataset auto-sync: %v", err)
		}
		defer svc.StopAutoSync()
	}

	srv := web.NewServer(svc)
	log.Printf("Listening on http://%s", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, srv); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
