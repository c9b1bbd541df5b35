package inventoryhttp

import (
	"sync"

	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// flashNotifier queues notifications as session flashes for the next page.
type flashNotifier struct {
	sess *shared.Session
}

func (n flashNotifier) Notify(level inventory.Level, message string) {
	if n.sess == nil {
		return
	}
	n.sess.AddFlash(shared.FlashMessage{Kind: string(level), Message: message})
}

// capturingNotifier remembers levels and forwards to next when set.
type capturingNotifier struct {
	next inventory.Notifier

	mu     sync.Mutex
	levels []inventory.Level
}

func (n *capturingNotifier) Notify(level inventory.Level, message string) {
	n.mu.Lock()
	n.levels = append(n.levels, level)
	n.mu.Unlock()
	if n.next != nil {
		n.next.Notify(level, message)
	}
}

func (n *capturingNotifier) saw(level inventory.Level) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, l := range n.levels {
		if l == level {
			return true
		}
	}
	return false
}
