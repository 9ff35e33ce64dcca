package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fridge-chef/internal/core/ai/diffusion"
	"fridge-chef/internal/core/ai/service"
	"fridge-chef/internal/core/document"
	"fridge-chef/internal/core/image"
	"fridge-chef/internal/core/job"
	"fridge-chef/internal/core/pipeline"
	"fridge-chef/internal/core/recipe"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/infrastructure/storage"
	"fridge-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// 元件狀態
const (
	CheckOK       = "ok"
	CheckDisabled = "disabled"
)

// App 組裝好的應用元件，API 與 CLI 共用
type App struct {
	Config       *config.Config
	AI           *service.Service
	Diffusion    *diffusion.Client
	PDF          *document.WKHTMLToPDF
	Store        storage.Store
	Orchestrator *pipeline.Orchestrator
	Jobs         *job.Manager
}

// Build 依設定建立所有元件
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	aiSvc, err := service.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI service: %w", err)
	}

	a := &App{Config: cfg, AI: aiSvc}

	var gen recipe.ImageGenerator
	if cfg.ImageGen.Enabled {
		a.Diffusion = diffusion.NewClient(cfg.ImageGen, image.NewService(cfg.Image.MaxSizeBytes))
		gen = a.Diffusion
	}

	var pdf document.PDFRenderer
	if cfg.PDF.Enabled {
		a.PDF = document.NewWKHTMLToPDF(cfg.PDF.BinPath)
		if err := a.PDF.Available(); err != nil {
			common.LogWarn("wkhtmltopdf 無法使用，PDF 產生將失敗", zap.Error(err))
		}
		pdf = a.PDF
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = aiSvc.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Store = store

	a.Orchestrator = pipeline.NewOrchestrator(
		recipe.NewService(aiSvc),
		recipe.NewIllustrator(gen),
		document.NewRenderer(pdf),
		store,
		pipeline.Options{
			OutputDir:   cfg.Storage.OutputDir,
			Concurrency: cfg.Pipeline.Concurrency,
		},
	)
	a.Jobs = job.NewManager(a.Orchestrator, cfg.Queue, cfg.Server.RequestTimeout)

	common.LogInfo("應用元件初始化完成",
		zap.String("provider", aiSvc.Provider().Name()),
		zap.String("model", aiSvc.Provider().GetModel()),
		zap.Bool("image_gen", a.Diffusion != nil),
		zap.Bool("pdf", a.PDF != nil),
		zap.String("storage", cfg.Storage.Driver),
		zap.Int("concurrency", cfg.Pipeline.Concurrency),
	)
	return a, nil
}

// Readiness 檢查各元件，回傳狀態與是否全部可用
func (a *App) Readiness(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true
	record := func(name string, err error) {
		if err != nil {
			checks[name] = err.Error()
			ready = false
			return
		}
		checks[name] = CheckOK
	}

	if a.AI == nil {
		record("completion", errors.New("not configured"))
		checks["cache"] = CheckDisabled
	} else {
		record("completion", nil)
		record("cache", a.AI.Ping(ctx))
	}

	if a.PDF == nil {
		checks["pdf"] = CheckDisabled
	} else {
		record("pdf", a.PDF.Available())
	}

	if a.Diffusion == nil {
		checks["image_gen"] = CheckDisabled
	} else {
		record("image_gen", a.Diffusion.Ping(ctx))
	}

	return checks, ready
}

// Close 依序關閉任務管理器與 AI 服務
func (a *App) Close() error {
	if a.Jobs != nil {
		a.Jobs.Close()
	}
	if a.AI != nil {
		return a.AI.Close()
	}
	return nil
}
