package main

import (
	"log"
	"log/slog"

	"github.com/tunecrate/tunecrate/internal/api/app"
	"github.com/tunecrate/tunecrate/internal/api/integration"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg, app.Collaborators{
		Mailer:     &integration.LogMailer{Logger: slog.Default()},
		Downloader: &integration.HTTPDownloader{},
		Objects:    &integration.FSObjectStore{Dir: "files", BasePath: "/music/files"},
	})
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
