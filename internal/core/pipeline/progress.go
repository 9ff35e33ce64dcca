package pipeline

import "sync"

const (
	promptBuiltPercent    = 10
	recipesFetchedPercent = 25
	enrichmentPercent     = 75
)

// tracker 彙總各食譜進度，保證百分比不倒退
type tracker struct {
	mu        sync.Mutex
	fn        ProgressFunc
	fractions []float64
	last      int
}

func newTracker(fn ProgressFunc) *tracker {
	return &tracker{fn: fn}
}

func (t *tracker) emit(state State, percent int, message string, recipe int) {
	if percent < t.last {
		percent = t.last
	}
	t.last = percent
	if t.fn != nil {
		t.fn(Progress{State: state, Percent: percent, Message: message, Recipe: recipe})
	}
}

// stage 流程層級的進度
func (t *tracker) stage(state State, percent int, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emit(state, percent, message, -1)
}

// start 設定食譜數量
func (t *tracker) start(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fractions = make([]float64, n)
}

// advance 更新第 index 道食譜的完成比例（0~1）
func (t *tracker) advance(index int, fraction float64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.fractions) {
		return
	}
	if fraction > t.fractions[index] {
		t.fractions[index] = fraction
	}

	share := float64(enrichmentPercent) / float64(len(t.fractions))
	percent := float64(recipesFetchedPercent)
	for _, f := range t.fractions {
		percent += share * f
	}
	t.emit(StateEnriching, int(percent), message, index)
}

// recipeMessage 第 index 道食譜開始時的訊息
func recipeMessage(index int) string {
	i := index + 1
	if i > len(loadingMessages)-1 {
		i = len(loadingMessages) - 1
	}
	return loadingMessages[i]
}
