package job

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"fridge-chef/internal/core/pipeline"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// 已結束的任務保留時間
const retention = time.Hour

// 每個訂閱者的事件緩衝
const subscriberBuffer = 32

// Runner 執行食譜流程
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, progress pipeline.ProgressFunc) (*pipeline.Result, error)
}

// Status 任務狀態
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Done 是否已結束
func (s Status) Done() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Job 任務快照
type Job struct {
	ID         string            `json:"id"`
	Status     Status            `json:"status"`
	Request    pipeline.Request  `json:"request"`
	Progress   pipeline.Progress `json:"progress"`
	Result     *pipeline.Result  `json:"result,omitempty"`
	Error      string            `json:"error,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// Event 推送給訂閱者的事件
type Event struct {
	JobID    string            `json:"job_id"`
	Status   Status            `json:"status"`
	Progress pipeline.Progress `json:"progress"`
	Result   *pipeline.Result  `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// QueueStatus 隊列狀態
type QueueStatus struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
	Jobs           int `json:"jobs"`
}

// Manager 任務隊列管理器
type Manager struct {
	runner    Runner
	cfg       config.QueueConfig
	timeout   time.Duration
	queue     chan string
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	processed int64

	mu      sync.RWMutex
	closed  bool
	jobs    map[string]*Job
	subs    map[string]map[int]chan Event
	nextSub int
}

// NewManager 創建任務管理器並啟動 workers，timeout 為單一任務的上限（0 表示不限）
func NewManager(runner Runner, cfg config.QueueConfig, timeout time.Duration) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		runner:  runner,
		cfg:     cfg,
		timeout: timeout,
		queue:   make(chan string, cfg.MaxSize),
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]*Job),
		subs:    make(map[string]map[int]chan Event),
	}

	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}

	common.LogInfo("任務管理器已啟動",
		zap.Int("workers", cfg.Workers),
		zap.Int("max_queue_size", cfg.MaxSize),
	)
	return m
}

// Enqueue 將請求加入隊列
func (m *Manager) Enqueue(req pipeline.Request) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Job{}, common.ErrServiceUnavailable
	}
	m.pruneLocked()

	j := &Job{
		ID:        common.GenerateUUID(),
		Status:    StatusQueued,
		Request:   req,
		Progress:  pipeline.Progress{State: pipeline.StateIdle, Recipe: -1},
		CreatedAt: time.Now(),
	}

	select {
	case m.queue <- j.ID:
	default:
		common.LogWarn("任務隊列已滿", zap.Int("queue_length", len(m.queue)))
		return Job{}, common.ErrQueueFull
	}

	m.jobs[j.ID] = j
	common.LogInfo("Job enqueued",
		zap.String("job_id", j.ID),
		zap.Int("queue_length", len(m.queue)),
	)
	return *j, nil
}

// Get 取得任務快照
func (m *Manager) Get(id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return Job{}, common.ErrJobNotFound
	}
	return *j, nil
}

// Subscribe 訂閱任務事件。任務結束後 channel 會被關閉；
// 已結束的任務會立即收到最後一個事件
func (m *Manager) Subscribe(id string) (<-chan Event, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, nil, common.ErrJobNotFound
	}

	ch := make(chan Event, subscriberBuffer)
	ch <- eventOf(j)
	if j.Status.Done() {
		close(ch)
		return ch, func() {}, nil
	}

	subID := m.nextSub
	m.nextSub++
	if m.subs[id] == nil {
		m.subs[id] = make(map[int]chan Event)
	}
	m.subs[id][subID] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id][subID]; ok {
			delete(m.subs[id], subID)
			close(c)
		}
	}
	return ch, cancel, nil
}

// Status 隊列狀態
func (m *Manager) Status() QueueStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return QueueStatus{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.cfg.MaxSize,
		Workers:        m.cfg.Workers,
		Jobs:           len(m.jobs),
	}
}

// Close 停止接受新任務、取消執行中的任務並等待 workers 結束
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	common.LogInfo("任務管理器已關閉", zap.Int64("processed", atomic.LoadInt64(&m.processed)))
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for id := range m.queue {
		if m.ctx.Err() != nil {
			m.finish(id, nil, m.ctx.Err())
			continue
		}
		m.process(id)
	}
}

func (m *Manager) process(id string) {
	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	now := time.Now()
	j.Status = StatusRunning
	j.StartedAt = &now
	req := j.Request
	m.publishLocked(j)
	m.mu.Unlock()

	ctx := m.ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	result, err := m.runner.Run(ctx, req, func(p pipeline.Progress) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if j, ok := m.jobs[id]; ok {
			j.Progress = p
			m.publishLocked(j)
		}
	})
	m.finish(id, result, err)
}

func (m *Manager) finish(id string, result *pipeline.Result, err error) {
	atomic.AddInt64(&m.processed, 1)

	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	j.FinishedAt = &now
	if err != nil {
		j.Status = StatusFailed
		j.Error = err.Error()
		common.LogError("Job failed", zap.String("job_id", id), zap.Error(err))
	} else {
		j.Status = StatusSucceeded
		j.Result = result
	}
	m.publishFinalLocked(j)

	for subID, ch := range m.subs[id] {
		close(ch)
		delete(m.subs[id], subID)
	}
	delete(m.subs, id)
}

// publishLocked 推送事件，訂閱者來不及讀時丟棄
func (m *Manager) publishLocked(j *Job) {
	ev := eventOf(j)
	for _, ch := range m.subs[j.ID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// publishFinalLocked 推送最後事件。緩衝已滿時先丟掉一個舊的進度事件，
// 確保訂閱者一定收到結果。所有寫入都在 m.mu 之下，丟掉一個後必有空位
func (m *Manager) publishFinalLocked(j *Job) {
	ev := eventOf(j)
	for _, ch := range m.subs[j.ID] {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
			common.LogWarn("最後事件推送失敗", zap.String("job_id", j.ID))
		}
	}
}

// pruneLocked 清除過期的已結束任務
func (m *Manager) pruneLocked() {
	cutoff := time.Now().Add(-retention)
	for id, j := range m.jobs {
		if j.Status.Done() && j.FinishedAt != nil && j.FinishedAt.Before(cutoff) {
			delete(m.jobs, id)
		}
	}
}

func eventOf(j *Job) Event {
	return Event{
		JobID:    j.ID,
		Status:   j.Status,
		Progress: j.Progress,
		Result:   j.Result,
		Error:    j.Error,
	}
}
