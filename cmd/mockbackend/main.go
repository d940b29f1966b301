// Command mockbackend is a local stand-in for the generation backend: the
// portfolio routes over an in-memory store and a generation route that
// answers with the bundled sample.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httpadapter "jobfolio/internal/adapter/http"
	"jobfolio/internal/adapter/repository"
	"jobfolio/internal/model"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	dbPath := flag.String("db", ":memory:", "sqlite database path")
	delay := flag.Duration("delay", 0, "generation latency to simulate")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	repo, err := repository.NewSQLiteRepo(context.Background(), *dbPath)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer repo.Close(context.Background())

	app := newApp(repo, *delay, logger)
	logger.Info("mock backend listening", zap.String("addr", *addr))
	if err := app.Listen(*addr); err != nil {
		logger.Fatal("mock backend failed", zap.Error(err))
	}
}

func newApp(repo repository.PortfolioRepo, delay time.Duration, logger *zap.Logger) *fiber.App {
	app := httpadapter.NewApp(httpadapter.NewHandler(httpadapter.Deps{
		Store: repo,
		Repo:  repo,
		Log:   logger,
	}))
	app.Post("/api/v1/generation", generate(delay))
	return app
}

type generationReq struct {
	ResumeMarkdown string `json:"resume_markdown"`
}

// generate answers with the sample portfolio, named after the résumé's
// first heading.
func generate(delay time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req generationReq
		if err := json.Unmarshal(c.Body(), &req); err != nil || strings.TrimSpace(req.ResumeMarkdown) == "" {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": "resume_markdown is required"})
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.Context().Done():
				return nil
			}
		}

		doc := model.SampleDocument()
		if name := heading(req.ResumeMarkdown); name != "" {
			rename(doc, name)
		}
		return c.JSON(doc)
	}
}

func heading(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

func rename(doc map[string]interface{}, name string) {
	if p, ok := doc["profile"].(map[string]interface{}); ok {
		p["name"] = name
	}
	secs, _ := doc["sections"].([]interface{})
	for _, s := range secs {
		sec, _ := s.(map[string]interface{})
		if props, ok := sec["props"].(map[string]interface{}); ok {
			if _, has := props["name"]; has {
				props["name"] = name
			}
		}
	}
}
