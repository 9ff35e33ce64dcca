package recipe

import (
	"context"
	"net/http"
	"strings"
	"time"

	"fridge-chef/internal/api/handlers"
	"fridge-chef/internal/api/middleware"
	"fridge-chef/internal/core/job"
	"fridge-chef/internal/core/pipeline"
	recipeService "fridge-chef/internal/core/recipe"
	"fridge-chef/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateRequest 食譜生成請求。ingredients 為空時合併冰箱各區的輸入
type GenerateRequest struct {
	Ingredients string `json:"ingredients"`
	ColdStorage string `json:"cold_storage"`
	Freezer     string `json:"freezer"`
	FridgeBody  string `json:"fridge_body"`
	Other       string `json:"other"`
	Dietary     string `json:"dietary"`
	FoodType    string `json:"food_type"`
}

// PipelineRequest 轉為流程輸入
func (r GenerateRequest) PipelineRequest() pipeline.Request {
	ingredients := strings.TrimSpace(r.Ingredients)
	if ingredients == "" {
		ingredients = recipeService.JoinIngredientSections(r.ColdStorage, r.Freezer, r.FridgeBody, r.Other)
	}
	return pipeline.Request{
		Ingredients: ingredients,
		Dietary:     r.Dietary,
		FoodType:    r.FoodType,
	}
}

// OptionsResponse 可選的飲食限制與料理類型
type OptionsResponse struct {
	Dietary  []string `json:"dietary"`
	FoodType []string `json:"food_type"`
}

// Runner 同步執行食譜流程
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, progress pipeline.ProgressFunc) (*pipeline.Result, error)
}

// JobQueue 非同步任務隊列
type JobQueue interface {
	Enqueue(req pipeline.Request) (job.Job, error)
	Get(id string) (job.Job, error)
	Subscribe(id string) (<-chan job.Event, func(), error)
}

// Handler 食譜處理程序
type Handler struct {
	runner Runner
	jobs   JobQueue
}

// NewHandler 創建新的食譜處理程序
func NewHandler(runner Runner, jobs JobQueue) *Handler {
	return &Handler{runner: runner, jobs: jobs}
}

// HandleOptions 回傳可選項目
func (h *Handler) HandleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, OptionsResponse{
		Dietary:  recipeService.DietaryOptions,
		FoodType: recipeService.FoodTypeOptions,
	})
}

// bind 解析並驗證請求
func bind(c *gin.Context) (pipeline.Request, bool) {
	var body GenerateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		handlers.Error(c, common.ErrInvalidRequest.Wrap(err))
		return pipeline.Request{}, false
	}

	req, err := body.PipelineRequest().Normalize()
	if err != nil {
		handlers.Error(c, err)
		return pipeline.Request{}, false
	}
	return req, true
}

// HandleGenerate 同步生成食譜，完成後一次回傳
func (h *Handler) HandleGenerate(c *gin.Context) {
	req, ok := bind(c)
	if !ok {
		return
	}

	requestID := requestid.Get(c)
	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestID),
		zap.String("dietary", req.Dietary),
		zap.String("food_type", req.FoodType),
	)

	start := time.Now()
	result, err := h.runner.Run(c.Request.Context(), req, func(p pipeline.Progress) {
		common.LogDebug("食譜進度",
			zap.String("request_id", requestID),
			zap.Int("percent", p.Percent),
			zap.String("message", p.Message),
		)
	})
	if err != nil {
		handlers.Error(c, err)
		return
	}

	c.Set(middleware.ContextRunID, result.RunID)
	common.LogInfo("食譜生成成功",
		zap.String("request_id", requestID),
		zap.String("run_id", result.RunID),
		zap.Int("recipes", len(result.Recipes)),
		zap.Duration("耗時", time.Since(start)),
	)
	c.JSON(http.StatusOK, result)
}
