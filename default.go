package tempo

import (
	"sync"
)

// 默认的全局管理器
var (
	mu      sync.Mutex //锁
	Default *Manager   //默认管理器
)

// Replace 替换默认的管理器
func Replace(m *Manager) {
	mu.Lock()
	defer mu.Unlock()

	// 此处可能被绕过
	if m == nil {
		return
	}
	if Default != nil && Default != m {
		Default.Close()
	}
	m.Start()
	Default = m
}

// Start 启动默认的管理器
func Start(opts ...Option) {
	mu.Lock()
	defer mu.Unlock()

	// 防止重复启动
	if Default != nil {
		return
	}

	Default = NewManager("default", opts...)
	Default.Start()
}

// Close 关闭默认的管理器, 停止评估循环
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if Default != nil {
		Default.Close()
	}
}

//====

// AddTimer 在默认管理器上创建并登记一个新的定时器
func AddTimer(id string, action Action, isBlockTimer bool, intervalSeconds, maxSeconds int64, isInactivityTimer bool, tickAction TickFunc) *Timer {
	return Default.AddTimer(id, action, isBlockTimer, intervalSeconds, maxSeconds, isInactivityTimer, tickAction)
}

// GetTimer 按名称查找默认管理器上的定时器, 不存在时返回 nil
func GetTimer(id string) *Timer {
	return Default.GetTimer(id)
}

// HasTimer 检查默认管理器上是否存在指定名称的定时器
func HasTimer(id string) bool {
	return Default.HasTimer(id)
}

// HasInactivityTimers 检查默认管理器上是否存在闲置定时器
func HasInactivityTimers() bool {
	return Default.HasInactivityTimers()
}

// CancelTimer 取消默认管理器上指定名称的定时器
func CancelTimer(id string) {
	Default.CancelTimer(id)
}

// CancelTimers 批量取消默认管理器上指定名称的定时器
func CancelTimers(ids []string) {
	Default.CancelTimers(ids)
}

// CancelBlockTimers 取消默认管理器上批量取消组内的全部定时器
func CancelBlockTimers() {
	Default.CancelBlockTimers()
}

// ResetInactivityTimers 用户活动的入口: 重置默认管理器上的全部闲置定时器
func ResetInactivityTimers() bool {
	return Default.ResetInactivityTimers()
}
