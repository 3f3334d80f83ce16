package tempo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDefault 测试默认管理器的生命周期与包级入口
func TestDefault(t *testing.T) {
	Start(WithCheckInterval(10 * time.Millisecond))
	defer Close()

	// 重复启动不会替换默认管理器
	first := Default
	Start()
	assert.Same(t, first, Default)

	timer := AddTimer("save", noopAction, false, 60, Indefinite, false, nil)
	assert.NotNil(t, timer)
	assert.True(t, HasTimer("save"))
	assert.Same(t, timer, GetTimer("save"))

	assert.False(t, HasInactivityTimers())
	idle := AddTimer("idle", noopAction, false, 30, Indefinite, true, nil)
	assert.NotNil(t, idle)
	assert.True(t, HasInactivityTimers())

	CancelTimer("save")
	assert.False(t, timer.IsActive())

	block := AddTimer("intro", noopAction, true, 10, 10, false, nil)
	CancelBlockTimers()
	assert.False(t, block.IsActive())
	assert.True(t, idle.IsActive())

	idle.Cancel()
	assert.True(t, ResetInactivityTimers())
	assert.True(t, idle.IsActive())
}

// TestReplace 测试替换默认管理器
func TestReplace(t *testing.T) {
	Start()
	old := Default

	// nil 被忽略
	Replace(nil)
	assert.Same(t, old, Default)

	m := NewManager("replacement", WithCheckInterval(10*time.Millisecond))
	Replace(m)
	assert.Same(t, m, Default)
	assert.Equal(t, running, m.state.Load())
	assert.Equal(t, closed, old.state.Load())

	Close()
}
