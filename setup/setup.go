package setup

import (
	"github.com/lonng/tempo"
	"github.com/lonng/tempo/internal/log"
)

// Setting 一条声明式定时器配置. MaxSeconds 为空表示没有运行上限.
type Setting struct {
	TimerName       string `yaml:"timerName"`
	IntervalSeconds int64  `yaml:"intervalSeconds"`
	MaxSeconds      *int64 `yaml:"maxSeconds"`
}

// Apply 把配置逐条解析到登记表. 未知名称记录错误后继续;
// 非正 interval 的条目静默跳过.
func Apply(reg *Registry, settings []Setting) {
	for _, s := range settings {
		if s.IntervalSeconds <= 0 {
			continue
		}
		fn, ok := reg.Lookup(s.TimerName)
		if !ok {
			log.Error("Unknown timer name %q in settings, skipped.", s.TimerName)
			continue
		}
		maxSeconds := tempo.Indefinite
		if s.MaxSeconds != nil {
			maxSeconds = *s.MaxSeconds
		}
		fn(s.IntervalSeconds, maxSeconds)
	}
}
