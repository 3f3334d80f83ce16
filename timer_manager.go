package tempo

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lonng/tempo/alert"
	"github.com/lonng/tempo/internal/env"
	"github.com/lonng/tempo/internal/log"
	"github.com/lonng/tempo/internal/snowflake"
	"github.com/timandy/routine"
)

// 管理器状态常量
const (
	created int32 = 0
	running int32 = 1
	closed  int32 = 2
)

// CapabilityFunc 宿主能力检查, 决定重置闲置定时器时清除哪个告警名称
type CapabilityFunc func() bool

// Manager 持有全部定时器, 以固定周期驱动评估, 并在每轮修剪掉
// 既不活跃也不是闲置定时器的条目
type Manager struct {
	name          string               // 管理器名称
	checkInterval time.Duration        // 评估周期
	clock         func() time.Time     // 时钟源, 测试时可注入
	alerter       alert.Alerter        // 外部告警服务
	capability    CapabilityFunc       // 告警名称选择的能力检查, 可空
	flake         *snowflake.SnowFlake // 定时器实例 UID 生成
	state         atomic.Int32         // 管理器状态
	chDie         chan struct{}        // 关闭信号通道
	mu            sync.RWMutex         // 保护 timers 的锁
	timers        map[string]*Timer    // 全部定时器, 以名称为键

	lastCheckAt           atomic.Int64 // 上一轮成功评估的时间戳(ns), 漂移校正锚点
	lastInactivityClearAt atomic.Int64 // 上一次重置闲置定时器的时间戳(ns), 限频锚点
}

// NewManager 构造一个新的定时器管理器, 需要调用 Start() 方法来启动
func NewManager(name string, opts ...Option) *Manager {
	m := &Manager{
		name:          name,
		checkInterval: env.CheckTimerInterval,
		clock:         time.Now,
		alerter:       alert.Nop{},
		flake:         snowflake.NewSnowFlake(),
		chDie:         make(chan struct{}),
		timers:        make(map[string]*Timer),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name 返回管理器名称
func (m *Manager) Name() string {
	return m.name
}

// AddTimer 创建并登记一个新的定时器, 初始为活跃状态. 参数非法或者已经存在
// 同名的活跃定时器时记录日志并跳过, 返回 nil, 不会 panic.
func (m *Manager) AddTimer(id string, action Action, isBlockTimer bool, intervalSeconds, maxSeconds int64, isInactivityTimer bool, tickAction TickFunc) *Timer {
	if action == nil {
		log.Warn("Tempo manager [%v] reject timer %q, nil action.", m.name, id)
		return nil
	}
	if intervalSeconds <= 0 {
		log.Warn("Tempo manager [%v] reject timer %q, non-positive interval %d.", m.name, id, intervalSeconds)
		return nil
	}
	if maxSeconds != Indefinite && maxSeconds <= 0 {
		log.Warn("Tempo manager [%v] reject timer %q, non-positive max %d.", m.name, id, maxSeconds)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// 名称唯一性只约束活跃的定时器; 失活但未被修剪的闲置定时器条目被替换掉
	if existing, ok := m.timers[id]; ok && existing.IsActive() {
		log.Warn("Tempo manager [%v] reject timer %q, duplicate active id.", m.name, id)
		return nil
	}

	t := newTimer(m.flake.NextId(), id, action, isBlockTimer, intervalSeconds, maxSeconds, isInactivityTimer, tickAction, m.clock())
	m.timers[id] = t
	if env.Debug {
		log.Info("Tempo manager [%v] add timer %q, UID=%d.", m.name, id, t.uid)
	}
	return t
}

// run 管理器的主循环
func (m *Manager) run() {
	if env.Debug {
		log.Info("Tempo manager [%v] starting.", m.name)
	}

	ticker := time.NewTicker(m.checkInterval)
	defer func() {
		ticker.Stop()
		if env.Debug {
			log.Info("Tempo manager [%v] closed.", m.name)
		}
	}()

	for {
		select {
		case <-ticker.C:
			m.checkTimers(m.clock())

		case <-m.chDie:
			return
		}
	}
}

// Start 启动管理器, 幂等, 重复调用不会产生第二个评估循环
func (m *Manager) Start() {
	if !m.state.CompareAndSwap(created, running) {
		return
	}

	// 子协程启动循环
	go m.run()
}

// Close 关闭管理器, 停止评估循环. 进行中的主动作不会被打断.
func (m *Manager) Close() {
	if !m.state.CompareAndSwap(running, closed) {
		return
	}
	close(m.chDie)
}

// checkTimers 执行一轮评估. 距上一轮不足一个评估周期(减容差)时整轮丢弃,
// 不排队不补偿, 保证节拍正确性优先于每轮必达. 否则修剪集合, 然后在 tick
// 协程上同步评估每个活跃定时器, 触发的主动作才派生协程执行, 不等待其完成.
// 同步评估保证轮次之间严格串行, 同一个间隔至多触发一次.
func (m *Manager) checkTimers(now time.Time) {
	last := m.lastCheckAt.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < m.checkInterval-env.TimerTolerance {
		return
	}
	m.lastCheckAt.Store(now.UnixNano())

	// 修剪: 既不活跃也不是闲置定时器的条目下轮不再遍历
	m.mu.Lock()
	var actives []*Timer
	for id, t := range m.timers {
		if !t.IsActive() {
			if !t.IsInactivityTimer() {
				delete(m.timers, id)
			}
			continue
		}
		actives = append(actives, t)
	}
	m.mu.Unlock()

	for _, t := range actives {
		if m.evalTimer(t, now) {
			t := t
			go m.fireTimer(t)
		}
	}
}

// evalTimer 在 tick 协程上同步评估一个定时器, 捕获 tickAction 的 panic,
// 返回是否需要派生协程执行主动作. 单个定时器的失败不影响同轮的其余定时器.
func (m *Manager) evalTimer(t *Timer, now time.Time) (fire bool) {
	defer func() {
		if err := recover(); err != nil {
			log.Error("Tempo manager [%v] evaluate timer %q error.", m.name, t.id, routine.NewRuntimeError(err))
		}
	}()
	return t.exec(now)
}

// fireTimer 在独立协程上执行主动作, 捕获 panic. 单个动作的失败只记录日志,
// 定时器保持活跃等待下一个间隔, 不影响其余定时器和评估循环.
func (m *Manager) fireTimer(t *Timer) {
	defer func() {
		if err := recover(); err != nil {
			log.Error("Tempo manager [%v] execute timer %q error.", m.name, t.id, routine.NewRuntimeError(err))
		}
	}()
	t.fire()
}

//====

// GetTimer 按名称查找定时器, 不存在时返回 nil. 空名称是合法的查不到.
func (m *Manager) GetTimer(id string) *Timer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.timers[id]
}

// HasTimer 检查是否存在指定名称的定时器
func (m *Manager) HasTimer(id string) bool {
	return m.GetTimer(id) != nil
}

// HasInactivityTimers 检查是否存在闲置定时器
func (m *Manager) HasInactivityTimers() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.timers {
		if t.IsInactivityTimer() {
			return true
		}
	}
	return false
}

// Count 返回当前集合中定时器的数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.timers)
}

// Walk 遍历定时器, fn 返回 true 时继续遍历, 返回 false 时停止遍历
func (m *Manager) Walk(fn func(*Timer) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.timers {
		if !fn(t) {
			return
		}
	}
}

//====

// CancelTimer 取消指定名称的定时器, 不存在时什么也不做
func (m *Manager) CancelTimer(id string) {
	t := m.GetTimer(id)
	if t == nil {
		return
	}
	t.Cancel()
}

// CancelTimers 批量取消指定名称的定时器
func (m *Manager) CancelTimers(ids []string) {
	for _, id := range ids {
		m.CancelTimer(id)
	}
}

// CancelBlockTimers 取消批量取消组内的全部定时器
func (m *Manager) CancelBlockTimers() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.timers {
		if t.IsBlockTimer() {
			t.Cancel()
		}
	}
}

//====

// ResetInactivityTimers 用户活动的入口: 清除闲置告警, 然后重置并重新激活
// 全部闲置定时器. 两次重置之间有最小间隔限频, 返回本次是否真正执行.
func (m *Manager) ResetInactivityTimers() bool {
	now := m.clock()
	last := m.lastInactivityClearAt.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < env.InactivityClearInterval {
		return false
	}
	m.lastInactivityClearAt.Store(now.UnixNano())

	// 按能力检查选择要清除的告警名称
	name := alert.IdleWarning
	if m.capability != nil && m.capability() {
		name = alert.IdleWarningModal
	}
	m.alerter.ClearAlerts(name)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.timers {
		if !t.IsInactivityTimer() {
			continue
		}
		t.ResetElapsedSeconds()
		t.ResetLastExecutionAt(now)
		t.reactivate()
	}
	if env.Debug {
		log.Info("Tempo manager [%v] inactivity timers reset, cleared alert %q.", m.name, name)
	}
	return true
}
