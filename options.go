package tempo

import (
	"time"

	"github.com/lonng/tempo/alert"
	"github.com/lonng/tempo/internal/env"
	"github.com/lonng/tempo/internal/log"
)

type Option func(*Manager)

//==== 基本

// WithDebugMode 启用调试
func WithDebugMode() Option {
	return func(m *Manager) {
		env.Debug = true
	}
}

// WithLogger 设置日志
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) {
		log.SetLogger(logger)
	}
}

//==== 调度

// WithCheckInterval 设置评估周期, 非正值被忽略
func WithCheckInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval <= 0 {
			log.Warn("Tempo manager [%v] ignore non-positive check interval %v.", m.name, interval)
			return
		}
		m.checkInterval = interval
	}
}

// WithClock 设置时钟源, 测试时注入模拟时钟
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock == nil {
			return
		}
		m.clock = clock
	}
}

//==== 闲置定时器

// WithAlerter 设置外部告警服务
func WithAlerter(alerter alert.Alerter) Option {
	return func(m *Manager) {
		if alerter == nil {
			return
		}
		m.alerter = alerter
	}
}

// WithCapability 设置能力检查函数, 决定重置闲置定时器时清除哪个告警名称
func WithCapability(fn CapabilityFunc) Option {
	return func(m *Manager) {
		m.capability = fn
	}
}
