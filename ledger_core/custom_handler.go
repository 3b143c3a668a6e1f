package ledger_core

import (
	"context"
	"sync"
)

type CustomHandler func(ctx context.Context, bookmng BookManage) error

var (
	handlerLock   sync.RWMutex
	customHandler = map[string]CustomHandler{}
)

// RegisterCustomHandler adds an after-commit hook and returns its remover.
func RegisterCustomHandler(name string, handler CustomHandler) func() {
	handlerLock.Lock()
	defer handlerLock.Unlock()

	customHandler[name] = handler
	return func() {
		handlerLock.Lock()
		defer handlerLock.Unlock()

		delete(customHandler, name)
	}
}

// customHandlers copies the registry so hooks run without holding the lock.
func customHandlers() map[string]CustomHandler {
	handlerLock.RLock()
	defer handlerLock.RUnlock()

	hdlrs := make(map[string]CustomHandler, len(customHandler))
	for name, handler := range customHandler {
		hdlrs[name] = handler
	}
	return hdlrs
}
