package stream

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"oddsengine/internal/buffer"
	"oddsengine/internal/detector"
	"oddsengine/internal/market"
	"oddsengine/internal/models"
	"oddsengine/internal/repository"
)

// Channel names published by the engine.
const (
	ChannelOdds         = "odds"
	ChannelLineMovement = "line_movement"
	ChannelSignals      = "signals"
	ChannelPredictions  = "predictions"
)

// Event is one fan-out payload on a named channel.
type Event struct {
	Channel   string      `json:"channel"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Handler consumes events for one subscription. Handlers run on their own
// goroutine and must not be shared across subscriptions.
type Handler func(Event)

var errInvalidSnapshot = errors.New("snapshot missing market id or timestamped fields")

type feedStats struct {
	snapshotsIn uint64
	lastSeen    time.Time
	lastError   string
}

// Engine ingests odds snapshots, runs inline movement detection, and fans
// events out to subscribers by channel. Publishing never blocks: slow
// subscribers lose events and a counter records the loss.
type Engine struct {
	Buffer *buffer.OddsBuffer
	Line   *detector.LineMovement
	Repo   repository.Repository
	Logger *zap.Logger

	subscriberBuf int

	mu     sync.RWMutex
	subs   map[string][]chan Event
	closed bool

	wg            sync.WaitGroup
	droppedFanout uint64

	feedMu sync.Mutex
	feeds  map[string]*feedStats
}

func NewEngine(buf *buffer.OddsBuffer, line *detector.LineMovement, repo repository.Repository, logger *zap.Logger, subscriberBuf int) *Engine {
	if subscriberBuf <= 0 {
		subscriberBuf = 64
	}
	return &Engine{
		Buffer:        buf,
		Line:          line,
		Repo:          repo,
		Logger:        logger,
		subscriberBuf: subscriberBuf,
		subs:          map[string][]chan Event{},
		feeds:         map[string]*feedStats{},
	}
}

// SubscribeChan returns a receive channel for one event channel. The channel
// is closed when the engine shuts down.
func (e *Engine) SubscribeChan(channel string, buf int) <-chan Event {
	if buf <= 0 {
		buf = e.subscriberBuf
	}
	ch := make(chan Event, buf)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.subs[channel] = append(e.subs[channel], ch)
	return ch
}

// Unsubscribe removes a channel obtained from SubscribeChan and closes it.
// Connection-scoped subscribers must call it on teardown or the engine keeps
// fanning out to them forever. A no-op after Close or for unknown channels.
func (e *Engine) Unsubscribe(channel string, ch <-chan Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	chans := e.subs[channel]
	for i, sub := range chans {
		if (<-chan Event)(sub) == ch {
			e.subs[channel] = append(chans[:i], chans[i+1:]...)
			close(sub)
			return
		}
	}
}

// Subscribe runs handler on its own goroutine for every event on channel
// until the engine closes. A panicking handler is logged and skips that
// event only; the subscription stays live for the next one.
func (e *Engine) Subscribe(channel string, handler Handler) {
	if handler == nil {
		return
	}
	ch := e.SubscribeChan(channel, 0)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for ev := range ch {
			e.dispatch(channel, handler, ev)
		}
	}()
}

func (e *Engine) dispatch(channel string, handler Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil && e.Logger != nil {
			e.Logger.Error("subscriber panic",
				zap.String("channel", channel),
				zap.Any("panic", r),
			)
		}
	}()
	handler(ev)
}

// Publish delivers an event to every subscriber of its channel without
// blocking. Events to full subscriber buffers are dropped and counted.
func (e *Engine) Publish(channel string, data interface{}) {
	ev := Event{Channel: channel, Timestamp: time.Now().UTC(), Data: data}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}
	for _, ch := range e.subs[channel] {
		select {
		case ch <- ev:
		default:
			atomic.AddUint64(&e.droppedFanout, 1)
		}
	}
}

// DroppedFanout reports the number of events lost to slow subscribers.
func (e *Engine) DroppedFanout() uint64 {
	return atomic.LoadUint64(&e.droppedFanout)
}

// ProcessOddsUpdate appends a snapshot to history, publishes it on the odds
// channel, and publishes any line movement the new reading completes.
func (e *Engine) ProcessOddsUpdate(ctx context.Context, snap market.OddsSnapshot) error {
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}
	if !snap.Valid() {
		e.markFeedError(snap.Book, errInvalidSnapshot)
		return errInvalidSnapshot
	}

	e.Buffer.Add(snap)
	e.markFeedSeen(snap.Book)
	e.Publish(ChannelOdds, snap)

	history := e.Buffer.History(snap.MarketID)
	if len(history) < 2 {
		return nil
	}
	report := e.Line.Detect(history)
	if report.Detected {
		e.Publish(ChannelLineMovement, map[string]interface{}{
			"market_id": snap.MarketID,
			"report":    report,
		})
		if e.Logger != nil {
			e.Logger.Debug("line movement",
				zap.String("market_id", snap.MarketID),
				zap.Float64("velocity", report.Velocity),
				zap.Int("movements", len(report.Movements)),
			)
		}
	}
	return nil
}

func (e *Engine) markFeedSeen(book string) {
	if book == "" {
		return
	}
	e.feedMu.Lock()
	defer e.feedMu.Unlock()
	fs, ok := e.feeds[book]
	if !ok {
		fs = &feedStats{}
		e.feeds[book] = fs
	}
	fs.snapshotsIn++
	fs.lastSeen = time.Now().UTC()
	fs.lastError = ""
}

func (e *Engine) markFeedError(book string, err error) {
	if book == "" || err == nil {
		return
	}
	e.feedMu.Lock()
	defer e.feedMu.Unlock()
	fs, ok := e.feeds[book]
	if !ok {
		fs = &feedStats{}
		e.feeds[book] = fs
	}
	fs.lastError = err.Error()
}

// FlushFeedHealth upserts per-book ingest counters to storage. Meant to run
// periodically from a cron job.
func (e *Engine) FlushFeedHealth(ctx context.Context) {
	if e.Repo == nil {
		return
	}
	e.feedMu.Lock()
	snapshot := make(map[string]feedStats, len(e.feeds))
	for book, fs := range e.feeds {
		snapshot[book] = *fs
	}
	e.feedMu.Unlock()

	now := time.Now().UTC()
	for book, fs := range snapshot {
		status := "healthy"
		if fs.lastError != "" {
			status = "degraded"
		}
		if !fs.lastSeen.IsZero() && now.Sub(fs.lastSeen) > 5*time.Minute {
			status = "stale"
		}
		item := &models.FeedSource{
			Name:         book,
			SourceType:   "odds_feed",
			SnapshotsIn:  fs.snapshotsIn,
			HealthStatus: status,
		}
		if !fs.lastSeen.IsZero() {
			seen := fs.lastSeen
			item.LastSeenAt = &seen
		}
		if fs.lastError != "" {
			msg := fs.lastError
			item.LastError = &msg
		}
		if err := e.Repo.UpsertFeedSource(ctx, item); err != nil && e.Logger != nil {
			e.Logger.Warn("feed health upsert failed", zap.String("book", book), zap.Error(err))
		}
	}
}

// Close stops fan-out, closes every subscriber channel, and waits for
// handler goroutines to drain.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	for _, chans := range e.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	e.subs = map[string][]chan Event{}
	e.mu.Unlock()
	e.wg.Wait()

	if e.Logger != nil {
		e.Logger.Info("stream engine closed",
			zap.Uint64("dropped_fanout", atomic.LoadUint64(&e.droppedFanout)),
		)
	}
}
