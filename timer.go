package tempo

import (
	"math"
	"sync/atomic"
	"time"
)

// Indefinite 作为 maxSeconds 的哨兵值, 表示定时器没有运行上限, 永不完成
const Indefinite int64 = math.MaxInt64

// elapsedSecondsBase 是 elapsedSeconds 的初始基准, 同时是 IsComplete 判定
// remaining 的上界. 两个用途是同一个历史兼容行为, 必须一起保留或一起修改,
// 不能单独调整其中一个 (见 DESIGN.md).
const elapsedSecondsBase int64 = 4800

// Action 定时器的主动作. 返回值目前不被核心使用, 但属于契约的一部分.
type Action func(*Timer) bool

// TickFunc 每轮评估都会同步执行的回调, 与主动作是否触发无关
type TickFunc func(*Timer)

// Timer 表示一个以名字标识的可调度动作, 重复或限次执行
type Timer struct {
	id              string       // 定时器名称, 在同名活跃定时器中唯一
	uid             int64        // 实例 UID, 区分同名定时器的先后实例
	action          Action       // 主动作
	tickAction      TickFunc     // 每轮评估都执行的回调, 可空
	blockTimer      bool         // 是否属于批量取消组
	inactivityTimer bool         // 是否闲置定时器, 失活后不被修剪, 可被重置复活
	intervalSeconds int64        // 触发间隔, 创建后不可变
	createdAt       time.Time    // 创建时间
	maxSeconds      atomic.Int64 // 运行上限, Indefinite 表示无上限; 取消时被钉在当前 elapsedSeconds
	elapsedSeconds  atomic.Int64 // 运行时变量, 每个管理器 tick 计一个单位
	lastExecutionAt atomic.Int64 // 运行时变量, 上一次触发主动作的时间戳(ns), 补偿触发的锚点
	active          atomic.Bool  // 运行时变量, 是否参与评估
	actionRunning   atomic.Bool  // 运行时变量, 主动作重入保护
}

// newTimer 创建一个新的定时器, 初始为活跃状态
func newTimer(uid int64, id string, action Action, blockTimer bool, intervalSeconds, maxSeconds int64, inactivityTimer bool, tickAction TickFunc, now time.Time) *Timer {
	t := &Timer{
		id:              id,
		uid:             uid,
		action:          action,
		tickAction:      tickAction,
		blockTimer:      blockTimer,
		inactivityTimer: inactivityTimer,
		intervalSeconds: intervalSeconds,
		createdAt:       now,
	}
	t.maxSeconds.Store(maxSeconds)
	t.elapsedSeconds.Store(elapsedSecondsBase)
	t.lastExecutionAt.Store(now.UnixNano())
	t.active.Store(true)
	return t
}

// ID 返回定时器名称
func (t *Timer) ID() string {
	return t.id
}

// UID 返回定时器实例的 UID
func (t *Timer) UID() int64 {
	return t.uid
}

// IntervalSeconds 返回触发间隔
func (t *Timer) IntervalSeconds() int64 {
	return t.intervalSeconds
}

// MaxSeconds 返回运行上限, Indefinite 表示无上限
func (t *Timer) MaxSeconds() int64 {
	return t.maxSeconds.Load()
}

// ElapsedSeconds 返回当前计数值
func (t *Timer) ElapsedSeconds() int64 {
	return t.elapsedSeconds.Load()
}

// CreatedAt 返回创建时间
func (t *Timer) CreatedAt() time.Time {
	return t.createdAt
}

// LastExecutionAt 返回上一次触发主动作的时间
func (t *Timer) LastExecutionAt() time.Time {
	return time.Unix(0, t.lastExecutionAt.Load())
}

// IsActive 检查定时器是否参与评估
func (t *Timer) IsActive() bool {
	return t.active.Load()
}

// IsBlockTimer 检查定时器是否属于批量取消组
func (t *Timer) IsBlockTimer() bool {
	return t.blockTimer
}

// IsInactivityTimer 检查是否闲置定时器
func (t *Timer) IsInactivityTimer() bool {
	return t.inactivityTimer
}

// IsActionRunning 检查主动作是否正在执行
func (t *Timer) IsActionRunning() bool {
	return t.actionRunning.Load()
}

// RemainingSeconds 返回剩余的运行时间. 无上限定时器返回 ok=false.
func (t *Timer) RemainingSeconds() (int64, bool) {
	maxSeconds := t.maxSeconds.Load()
	if maxSeconds == Indefinite {
		return 0, false
	}
	remaining := maxSeconds - t.elapsedSeconds.Load()
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// IsComplete 检查有上限的定时器是否已经跑完. 无上限定时器永不完成.
// 判定上界是 elapsedSecondsBase 而不是 0, 与 elapsedSeconds 的初始基准
// 是同一个兼容行为, 必须一起保留 (见 DESIGN.md).
func (t *Timer) IsComplete() bool {
	remaining, ok := t.RemainingSeconds()
	if !ok {
		return false
	}
	return remaining <= elapsedSecondsBase
}

// Cancel 取消定时器: 立即失活, 并把运行上限钉在当前计数值上, 使下一次
// 完成检查即返回 true. 幂等. 进行中的主动作不会被打断, 会跑完, 其结果被丢弃.
func (t *Timer) Cancel() {
	if !t.active.CompareAndSwap(true, false) {
		return
	}
	t.maxSeconds.Store(t.elapsedSeconds.Load())
}

// ResetElapsedSeconds 把计数值清零. 只应对无上限定时器和闲置定时器调用,
// 对限次定时器调用会使其完成判定失去同步, 由调用方保证.
func (t *Timer) ResetElapsedSeconds() {
	t.elapsedSeconds.Store(0)
}

// ResetLastExecutionAt 把触发锚点设为 now, 避免重置后立刻补偿触发
func (t *Timer) ResetLastExecutionAt(now time.Time) {
	t.lastExecutionAt.Store(now.UnixNano())
}

// reactivate 重新激活, 闲置定时器重置时的唯一复活路径
func (t *Timer) reactivate() {
	t.active.Store(true)
}

// deactivate 失活, 终态 (闲置定时器除外)
func (t *Timer) deactivate() {
	t.active.Store(false)
}

// exec 同步评估一轮: 计数, 执行 tickAction, 判定是否触发. 判定通过时抢占
// 重入保护并盖好触发锚点, 返回 true, 主动作由调用方通过 fire 执行.
// 评估路径上没有挂起点, 同一个管理器的评估轮次之间严格串行,
// 同一个间隔不会被后续轮次再判成补偿触发.
func (t *Timer) exec(now time.Time) bool {
	if !t.active.Load() {
		return false
	}

	// 每个管理器 tick 计一个单位, 不按真实墙钟秒计; 漂移校正在管理器层完成
	elapsed := t.elapsedSeconds.Add(1)

	// tickAction 每轮都执行, 与主动作是否触发无关
	if t.tickAction != nil {
		t.tickAction(t)
	}

	if !t.shouldFire(now, elapsed) {
		return false
	}

	// 重入保护: 上一次主动作还没结束时跳过本次触发, 不排队不重试
	if !t.actionRunning.CompareAndSwap(false, true) {
		return false
	}

	// 锚点在评估路径上同步盖好, 再交给 fire, 后续轮次看到的是新锚点
	t.lastExecutionAt.Store(now.UnixNano())
	return true
}

// fire 执行主动作并做完成收尾, 结束时释放重入保护.
// 只能在 exec 返回 true 之后调用一次, 这是评估流程里唯一的挂起点.
func (t *Timer) fire() {
	defer t.actionRunning.Store(false)

	t.action(t) // 返回值目前不使用

	if t.IsComplete() {
		t.deactivate()
	}
}

// shouldFire 判定本轮是否触发主动作: 计数值到达间隔的整数倍, 或者距上次
// 触发的墙钟时间超过间隔 (补偿触发: 进程挂起等导致 tick 缺失时兜底).
func (t *Timer) shouldFire(now time.Time, elapsed int64) bool {
	if !t.active.Load() || t.actionRunning.Load() {
		return false
	}
	if elapsed%t.intervalSeconds == 0 {
		return true
	}
	diff := now.Sub(time.Unix(0, t.lastExecutionAt.Load()))
	if diff < 0 {
		diff = -diff
	}
	return diff >= time.Duration(t.intervalSeconds+1)*time.Second
}
