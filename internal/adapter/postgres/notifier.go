package postgres

import (
	"context"
	"strconv"
	"sync"
	"time"

	"mealtracker/internal/domain"
	"mealtracker/internal/metrics"
	"mealtracker/internal/notify"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
	pingInterval = 90 * time.Second
)

// Notifier turns NOTIFY messages on Channel into per-user change signals.
type Notifier struct {
	listener *pq.Listener
	hub      *notify.Hub
	metrics  *metrics.Manager

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

var _ domain.ChangeNotifier = (*Notifier)(nil)

// NewNotifier opens a dedicated LISTEN connection. m may be nil.
func NewNotifier(connStr string, m *metrics.Manager) (*Notifier, error) {
	l := pq.NewListener(connStr, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warnf("postgres listener event %d: %s", ev, err)
		}
	})
	if err := l.Listen(Channel); err != nil {
		_ = l.Close()
		return nil, err
	}

	n := newNotifier(m)
	n.listener = l
	n.wg.Add(1)
	go n.loop()
	return n, nil
}

func newNotifier(m *metrics.Manager) *Notifier {
	return &Notifier{hub: notify.NewHub(), metrics: m, stop: make(chan struct{})}
}

// Subscribe returns a channel signalled whenever userID's data changes.
func (n *Notifier) Subscribe(ctx context.Context, userID int64) (<-chan struct{}, func()) {
	return n.hub.Subscribe(ctx, userID)
}

// Close stops listening and waits for the receive loop to exit.
func (n *Notifier) Close() error {
	var err error
	n.once.Do(func() {
		close(n.stop)
		n.wg.Wait()
		if n.listener != nil {
			err = n.listener.Close()
		}
	})
	return err
}

func (n *Notifier) loop() {
	defer n.wg.Done()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.stop:
			return
		case msg, ok := <-n.listener.Notify:
			if !ok {
				return
			}
			n.handle(msg)
		case <-ticker.C:
			if err := n.listener.Ping(); err != nil {
				log.Warnf("postgres listener ping: %s", err)
			}
		}
	}
}

// handle dispatches one notification. A nil message means the connection
// was re-established and notifications may have been lost, so every
// subscriber is signalled.
func (n *Notifier) handle(msg *pq.Notification) {
	if msg == nil {
		n.hub.Broadcast()
		return
	}
	userID, err := strconv.ParseInt(msg.Extra, 10, 64)
	if err != nil {
		log.Warnf("postgres notification with bad payload %q", msg.Extra)
		if n.metrics != nil {
			n.metrics.CounterNotificationsDropped.Inc()
		}
		return
	}
	n.hub.Publish(userID)
}
