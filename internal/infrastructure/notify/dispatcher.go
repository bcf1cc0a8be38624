package notify

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// Message is a single chat notification awaiting delivery.
type Message struct {
	ChatID int64
	Text   string
}

// Sender delivers a single message to a chat channel.
type Sender interface {
	Send(chatID int64, text string) error
}

// Dispatcher routes notifications to a fixed set of workers using consistent
// hashing on the chat id, guaranteeing per-chat delivery ordering. Delivery
// is fire-and-forget: failures are logged, never propagated.
type Dispatcher struct {
	workers []chan Message
	sender  Sender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan Message, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a message to the worker responsible for its chat. When the
// worker's buffer is full the message is dropped rather than blocking the
// caller: notifications are best-effort by contract.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.workers[d.shardIndex(msg.ChatID)] <- msg:
	default:
		d.log.Warn().Int64("chat_id", msg.ChatID).Msg("notification queue full, message dropped")
	}
}

// shardIndex maps a chat id deterministically to a worker index.
func (d *Dispatcher) shardIndex(chatID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(chatID, 10)))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sender.Send(msg.ChatID, msg.Text); err != nil {
				d.log.Error().Err(err).
					Int64("chat_id", msg.ChatID).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
		}
	}
}
