package setup

import (
	"sort"
	"sync"

	"github.com/pingcap/errors"
)

// RegisterFunc 按给定的 interval/max 配置登记一个定时器, 内部调用 AddTimer
type RegisterFunc func(intervalSeconds, maxSeconds int64)

// Registry 定时器名称到登记函数的显式映射表, 启动期填充后只读
type Registry struct {
	mu      sync.RWMutex
	entries map[string]RegisterFunc
}

// NewRegistry 构造函数
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]RegisterFunc),
	}
}

// Register 登记一个定时器名称, 名称重复或参数非法时返回错误
func (r *Registry) Register(name string, fn RegisterFunc) error {
	if name == "" {
		return errors.New("setup: empty timer name")
	}
	if fn == nil {
		return errors.Errorf("setup: nil register function for timer %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; ok {
		return errors.Errorf("setup: timer %q already registered", name)
	}
	r.entries[name] = fn
	return nil
}

// Lookup 按名称查找登记函数
func (r *Registry) Lookup(name string) (RegisterFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.entries[name]
	return fn, ok
}

// Names 返回全部已登记的名称, 按字典序
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
