package module

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/view"
)

var (
	registry = NewRegistry()

	chainMu sync.RWMutex
	chain   Chain
	once    sync.Once
)

// Default returns the process-wide registry consulted first by Get.
func Default() *Registry { return registry }

// Register records name in the default registry.
func Register(name string, mem memview.Memory, base memview.Address) {
	registry.Register(name, mem, base)
}

func defaultChain() Chain {
	once.Do(func() {
		chain = Chain{registry}
		if self := selfLocator(); self != nil {
			chain = append(chain, self)
		}
	})
	chainMu.RLock()
	defer chainMu.RUnlock()
	return chain
}

// Use appends l to the default chain, after the locators already there.
func Use(l Locator) {
	defaultChain()
	chainMu.Lock()
	chain = append(chain, l)
	chainMu.Unlock()
}

// Get returns a view anchored at the base of the named module, or false
// when no locator in the default chain knows it.
func Get(name string) (view.View, bool) {
	v, ok := defaultChain().Locate(name)
	if !ok {
		Logger().Debug("module not found", zap.String("name", name))
	}
	return v, ok
}
