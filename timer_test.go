package tempo

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// noopAction 什么都不做的主动作
func noopAction(*Timer) bool {
	return true
}

// countAction 返回一个累加计数的主动作
func countAction(count *atomic.Int32) Action {
	return func(*Timer) bool {
		count.Add(1)
		return true
	}
}

// step 同步驱动一轮评估, 并立即执行触发的主动作
func step(timer *Timer, now time.Time) {
	if timer.exec(now) {
		timer.fire()
	}
}

// TestTimer_RemainingSeconds 测试剩余时间的计算
func TestTimer_RemainingSeconds(t *testing.T) {
	now := time.Now()

	t.Run("Indefinite", func(t *testing.T) {
		timer := newTimer(1, "save", noopAction, false, 60, Indefinite, false, nil, now)
		_, ok := timer.RemainingSeconds()
		assert.False(t, ok)
	})

	t.Run("Bounded", func(t *testing.T) {
		timer := newTimer(2, "intro", noopAction, false, 10, elapsedSecondsBase+100, false, nil, now)
		remaining, ok := timer.RemainingSeconds()
		assert.True(t, ok)
		assert.Equal(t, int64(100), remaining)
	})

	t.Run("Clamped To Zero", func(t *testing.T) {
		timer := newTimer(3, "intro", noopAction, false, 10, 10, false, nil, now)
		remaining, ok := timer.RemainingSeconds()
		assert.True(t, ok)
		assert.Equal(t, int64(0), remaining)
	})
}

// TestTimer_IsComplete 测试完成判定
func TestTimer_IsComplete(t *testing.T) {
	now := time.Now()

	t.Run("Indefinite Never Completes", func(t *testing.T) {
		timer := newTimer(1, "save", noopAction, false, 60, Indefinite, false, nil, now)
		for i := 0; i < 10000; i++ {
			timer.elapsedSeconds.Add(1)
		}
		assert.False(t, timer.IsComplete())
	})

	t.Run("Bounded Completes Within Upper Bound", func(t *testing.T) {
		// remaining 落入 [0, elapsedSecondsBase] 即视为完成
		timer := newTimer(2, "intro", noopAction, false, 10, 2*elapsedSecondsBase, false, nil, now)
		remaining, ok := timer.RemainingSeconds()
		assert.True(t, ok)
		assert.Equal(t, elapsedSecondsBase, remaining)
		assert.True(t, timer.IsComplete())
	})

	t.Run("Bounded Not Complete Above Upper Bound", func(t *testing.T) {
		timer := newTimer(3, "intro", noopAction, false, 10, 2*elapsedSecondsBase+1, false, nil, now)
		assert.False(t, timer.IsComplete())

		timer.elapsedSeconds.Add(1)
		assert.True(t, timer.IsComplete())
	})
}

// TestTimer_Cancel 测试取消
func TestTimer_Cancel(t *testing.T) {
	now := time.Now()

	t.Run("Cancel Deactivates And Completes", func(t *testing.T) {
		timer := newTimer(1, "save", noopAction, false, 60, Indefinite, false, nil, now)
		assert.True(t, timer.IsActive())
		assert.False(t, timer.IsComplete())

		timer.Cancel()
		assert.False(t, timer.IsActive())
		assert.True(t, timer.IsComplete())
		assert.Equal(t, timer.ElapsedSeconds(), timer.MaxSeconds())
	})

	t.Run("Idempotent", func(t *testing.T) {
		timer := newTimer(2, "save", noopAction, false, 60, Indefinite, false, nil, now)
		timer.Cancel()
		pinned := timer.MaxSeconds()

		timer.elapsedSeconds.Add(1)
		timer.Cancel()
		assert.Equal(t, pinned, timer.MaxSeconds())
	})
}

// TestTimer_Exec 测试按间隔触发
func TestTimer_Exec(t *testing.T) {
	t.Run("Fires On Interval Multiples", func(t *testing.T) {
		now := time.Now()
		var count atomic.Int32
		timer := newTimer(1, "save", countAction(&count), false, 5, Indefinite, false, nil, now)

		// 模拟 1s 一轮的 tick
		for i := 1; i <= 12; i++ {
			step(timer, now.Add(time.Duration(i)*time.Second))
		}
		assert.Equal(t, int32(2), count.Load()) // 第 5 轮和第 10 轮
		assert.True(t, timer.IsActive())
	})

	t.Run("Inactive Timer Is Noop", func(t *testing.T) {
		now := time.Now()
		var count atomic.Int32
		timer := newTimer(2, "save", countAction(&count), false, 1, Indefinite, false, nil, now)
		timer.Cancel()

		elapsed := timer.ElapsedSeconds()
		step(timer, now.Add(time.Second))
		assert.Equal(t, int32(0), count.Load())
		assert.Equal(t, elapsed, timer.ElapsedSeconds())
	})

	t.Run("Bounded Deactivates After Final Fire", func(t *testing.T) {
		now := time.Now()
		var count atomic.Int32
		timer := newTimer(3, "intro", countAction(&count), true, 10, 10, false, nil, now)

		for i := 1; i <= 10; i++ {
			step(timer, now.Add(time.Duration(i)*time.Second))
		}
		assert.Equal(t, int32(1), count.Load())
		assert.True(t, timer.IsComplete())
		assert.False(t, timer.IsActive())
	})

	t.Run("Tick Action Runs Every Tick", func(t *testing.T) {
		now := time.Now()
		var ticks atomic.Int32
		tick := func(*Timer) {
			ticks.Add(1)
		}
		timer := newTimer(4, "save", noopAction, false, 5, Indefinite, false, tick, now)

		for i := 1; i <= 7; i++ {
			step(timer, now.Add(time.Duration(i)*time.Second))
		}
		assert.Equal(t, int32(7), ticks.Load())
	})
}

// TestTimer_CatchUp 测试补偿触发: tick 缺失足够久时按墙钟差兜底
func TestTimer_CatchUp(t *testing.T) {
	now := time.Now()
	var count atomic.Int32
	timer := newTimer(1, "save", countAction(&count), false, 5, Indefinite, false, nil, now)

	// 第 1 轮正常, 不触发
	step(timer, now.Add(time.Second))
	assert.Equal(t, int32(0), count.Load())

	// 进程挂起 6 秒后恢复: elapsedSeconds 不是间隔的整数倍, 但墙钟差已超过间隔
	step(timer, now.Add(7*time.Second))
	assert.Equal(t, int32(1), count.Load())
	assert.NotZero(t, timer.ElapsedSeconds()%timer.IntervalSeconds())

	// 触发后锚点更新, 下一轮不再补偿
	step(timer, now.Add(8*time.Second))
	assert.Equal(t, int32(1), count.Load())
}

// TestTimer_Reentrancy 测试重入保护: 动作未结束时后续 tick 跳过触发
func TestTimer_Reentrancy(t *testing.T) {
	now := time.Now()
	var count atomic.Int32
	release := make(chan struct{})
	slow := func(*Timer) bool {
		count.Add(1)
		<-release
		return true
	}
	// interval 1, 每一轮 elapsed 都是间隔的整数倍
	timer := newTimer(1, "slow", slow, false, 1, Indefinite, false, nil, now)

	// 第一轮评估抢到触发, 锚点在评估路径上就已盖好
	assert.True(t, timer.exec(now.Add(time.Second)))
	assert.True(t, timer.IsActionRunning())
	assert.Equal(t, now.Add(time.Second).UnixNano(), timer.LastExecutionAt().UnixNano())

	done := make(chan struct{})
	go func() {
		timer.fire()
		close(done)
	}()

	// 等待动作进入执行
	for count.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	// 动作未结束时后续评估轮不会再次抢到触发
	assert.False(t, timer.exec(now.Add(2*time.Second)))
	assert.Equal(t, int32(1), count.Load())

	close(release)
	<-done
	assert.False(t, timer.IsActionRunning())

	// 动作结束后恢复触发
	step(timer, now.Add(3*time.Second))
	assert.Equal(t, int32(2), count.Load())
}

// TestTimer_Reset 测试计数与锚点重置
func TestTimer_Reset(t *testing.T) {
	now := time.Now()
	timer := newTimer(1, "idle", noopAction, false, 30, Indefinite, true, nil, now)

	step(timer, now.Add(time.Second))
	assert.Equal(t, elapsedSecondsBase+1, timer.ElapsedSeconds())

	timer.ResetElapsedSeconds()
	assert.Equal(t, int64(0), timer.ElapsedSeconds())

	later := now.Add(time.Hour)
	timer.ResetLastExecutionAt(later)
	assert.Equal(t, later.UnixNano(), timer.LastExecutionAt().UnixNano())
}
