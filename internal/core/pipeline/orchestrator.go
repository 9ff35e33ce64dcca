package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fridge-chef/internal/core/document"
	"fridge-chef/internal/core/recipe"
	"fridge-chef/internal/infrastructure/storage"
	"fridge-chef/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options 流程設定
type Options struct {
	OutputDir   string
	Concurrency int
}

// Orchestrator 串起食譜生成的各個步驟
type Orchestrator struct {
	recipes     RecipeSource
	illustrator Illustrator
	renderer    DocumentRenderer
	store       storage.Store
	opts        Options
}

// NewOrchestrator store 為 nil 時不發布產出檔案
func NewOrchestrator(recipes RecipeSource, illustrator Illustrator, renderer DocumentRenderer, store storage.Store, opts Options) *Orchestrator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	return &Orchestrator{
		recipes:     recipes,
		illustrator: illustrator,
		renderer:    renderer,
		store:       store,
		opts:        opts,
	}
}

// Run 執行完整流程。只有請求無效或 context 取消時回傳錯誤，其餘失敗都降級處理
func (o *Orchestrator) Run(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := common.GenerateUUID()
	dir := filepath.Join(o.opts.OutputDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &Result{
		RunID:       runID,
		Ingredients: req.Ingredients,
		Dietary:     req.Dietary,
		FoodType:    req.FoodType,
		Recipes:     []RecipeResult{},
	}

	t := newTracker(progress)
	t.stage(StatePromptBuilt, promptBuiltPercent, loadingMessages[0])

	recipes, err := o.recipes.FetchRecipes(ctx, req.Ingredients, req.Dietary, req.FoodType)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		common.LogWarn("取得食譜失敗，以空結果繼續", zap.String("run_id", runID), zap.Error(err))
		result.ParseFailed = true
		result.ParseError = err.Error()
		recipes = nil
	}
	t.stage(StateRecipesFetched, recipesFetchedPercent, loadingMessages[0])

	results := make([]RecipeResult, len(recipes))
	t.start(len(recipes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)
	for i := range recipes {
		g.Go(func() error {
			res, err := o.enrich(gctx, t, req, runID, dir, i, recipes[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Recipes = results
	t.stage(StateComplete, 100, CompleteMessage)

	common.LogInfo("食譜流程完成",
		zap.String("run_id", runID),
		zap.Int("recipes", len(results)),
		zap.Bool("parse_failed", result.ParseFailed),
		zap.Duration("耗時", time.Since(start)),
	)
	return result, nil
}

// enrich 依序處理單道食譜：圖片、營養、缺少食材、連結、文件
func (o *Orchestrator) enrich(ctx context.Context, t *tracker, req Request, runID, dir string, index int, r common.Recipe) (RecipeResult, error) {
	msg := recipeMessage(index)
	t.advance(index, 0, msg)

	if o.illustrator != nil {
		o.illustrator.Annotate(ctx, &r, dir, index)
	}
	if err := ctx.Err(); err != nil {
		return RecipeResult{}, err
	}

	nutrition, err := o.recipes.FetchNutrition(ctx, r)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return RecipeResult{}, ctxErr
		}
		common.LogWarn("Error parsing nutrition", zap.String("title", r.Title), zap.Error(err))
		nutrition = common.Nutrition{}
	}
	r.Nutrition = &nutrition
	t.advance(index, 0.3, msg)

	r.MissingIngredients = recipe.ExtractMissingIngredients(r.Ingredients, req.Ingredients)
	t.advance(index, 0.6, msg)

	recipe.AnnotateLinks(r.MissingIngredients)

	if r.ImagePath != "" {
		r.ImageURL = o.publish(ctx, r.ImagePath, runID, storage.ContentTypePNG)
	}

	res := RecipeResult{Index: index}

	html, err := o.renderer.Fragment(r, false)
	if err != nil {
		common.LogWarn("Error rendering recipe", zap.String("title", r.Title), zap.Error(err))
	}
	res.HTML = html

	pdfPath, err := o.renderer.WritePDF(ctx, r, filepath.Join(dir, document.PDFFileName(index)))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return RecipeResult{}, ctxErr
		}
		common.LogWarn("Error generating PDF", zap.String("title", r.Title), zap.Error(err))
	} else {
		res.Document = &Document{Path: pdfPath, URL: o.publish(ctx, pdfPath, runID, storage.ContentTypePDF)}
	}

	res.Recipe = r
	t.advance(index, 1, msg)
	return res, nil
}

// publish 發布產出檔案，失敗時回傳空字串
func (o *Orchestrator) publish(ctx context.Context, localPath, runID, contentType string) string {
	if o.store == nil {
		return ""
	}
	url, err := o.store.Publish(ctx, localPath, storage.Key(runID, filepath.Base(localPath)), contentType)
	if err != nil {
		common.LogWarn("發布檔案失敗", zap.String("path", localPath), zap.Error(err))
		return ""
	}
	return url
}
