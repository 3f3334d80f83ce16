package alert

import (
	"sync"
)

// 闲置告警名称, 重置闲置定时器时按能力检查二选一清除
const (
	IdleWarning      = "idle-warning"       //普通闲置告警
	IdleWarningModal = "idle-warning-modal" //模态闲置告警, 支持模态提醒的宿主使用
)

// Alerter 外部通知/告警服务的边界接口, 核心只在重置闲置定时器时调用它
type Alerter interface {
	// ClearAlerts 清除指定名称的告警
	ClearAlerts(names ...string)
}

// Nop 空实现, 未注入告警服务时的默认值
type Nop struct{}

func (Nop) ClearAlerts(...string) {}

//====

// Recorder 记录每次被清除的告警名称, 供测试与示例观察
type Recorder struct {
	mu      sync.Mutex
	cleared [][]string
}

func (r *Recorder) ClearAlerts(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cleared := make([]string, len(names))
	copy(cleared, names)
	r.cleared = append(r.cleared, cleared)
}

// Cleared 返回全部清除记录的副本
func (r *Recorder) Cleared() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]string, len(r.cleared))
	copy(out, r.cleared)
	return out
}

// Count 返回清除次数
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.cleared)
}
