package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/events"
	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/antonminaichev/laundry-orders/internal/util/phone"
)

const (
	JobCustomerCreated = "customer_created"
	JobAdminCreated    = "admin_created"
	JobCustomerStatus  = "customer_status"
	JobEvent           = "order_event"
)

type Enqueuer interface {
	Enqueue(j Job) bool
}

type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type NotifierConfig struct {
	AdminPhone string
	QueueURL   string
	Statuses   []order.Status
	// EventQueue carries published events. It must run jobs one at a time so
	// an order's events reach the broker in the order they happened. Nil
	// falls back to the message queue.
	EventQueue Enqueuer
}

// Notifier turns order changes into queued delivery jobs. It never returns errors.
type Notifier struct {
	queue      Enqueuer
	eventQueue Enqueuer
	sender     Sender
	events     EventPublisher
	adminPhone string
	queueURL   string
	worthy     map[order.Status]bool
	now        func() time.Time
}

func NewNotifier(q Enqueuer, s Sender, ev EventPublisher, cfg NotifierConfig) *Notifier {
	worthy := make(map[order.Status]bool, len(cfg.Statuses))
	for _, st := range cfg.Statuses {
		worthy[st] = true
	}
	eq := cfg.EventQueue
	if eq == nil {
		eq = q
	}
	return &Notifier{
		queue:      q,
		eventQueue: eq,
		sender:     s,
		events:     ev,
		adminPhone: cfg.AdminPhone,
		queueURL:   cfg.QueueURL,
		worthy:     worthy,
		now:        time.Now,
	}
}

// ParseStatuses reads a comma separated status list.
func ParseStatuses(csv string) ([]order.Status, error) {
	var out []order.Status
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		st := order.Status(strings.ToUpper(s))
		if !st.Valid() {
			return nil, fmt.Errorf("unknown status %q", s)
		}
		out = append(out, st)
	}
	return out, nil
}

func (n *Notifier) send(name, code, target, message string) {
	n.queue.Enqueue(Job{
		Name:      name,
		OrderCode: code,
		Run: func(ctx context.Context) error {
			return n.sender.Send(ctx, target, message)
		},
	})
}

func (n *Notifier) publish(typ string, o order.Order) {
	if n.events == nil {
		return
	}
	e := events.NewEvent(typ, o, n.now())
	n.eventQueue.Enqueue(Job{
		Name:      JobEvent,
		OrderCode: o.Code,
		Run: func(ctx context.Context) error {
			return n.events.Publish(ctx, e)
		},
	})
}

// NotifyCreated queues the customer message when the phone is deliverable and
// the admin message always.
func (n *Notifier) NotifyCreated(_ context.Context, o order.Order) {
	target, ok := phone.Deliverable(o.Phone)
	if ok {
		n.send(JobCustomerCreated, o.Code, target, customerCreatedMessage(o, n.queueURL))
	}
	if n.adminPhone != "" {
		n.send(JobAdminCreated, o.Code, n.adminPhone, adminCreatedMessage(o, ok))
	}
	n.publish(events.TypeOrderCreated, o)
}

// NotifyStatusChanged queues a customer message for notification-worthy statuses.
func (n *Notifier) NotifyStatusChanged(_ context.Context, o order.Order, s order.Status) {
	n.publish(events.TypeOrderStatusChanged, o)
	if !n.worthy[s] {
		return
	}
	target, ok := phone.Deliverable(o.Phone)
	if !ok {
		return
	}
	n.send(JobCustomerStatus, o.Code, target, statusMessage(o, s))
}
