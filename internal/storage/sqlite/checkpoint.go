package sqlite

import (
	"context"
	"database/sql"
	"log"
	"sync"
)

// Checkpointer flushes WAL pages to the main database file on a background
// goroutine. Appends request a checkpoint and return immediately; the
// durable watermark trails the log head until the worker catches up, and
// LastDurable exposes that gap.
type Checkpointer struct {
	sqlDB *sql.DB

	mu          sync.Mutex
	lastDurable string
	pending     string

	requests chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newCheckpointer(sqlDB *sql.DB) *Checkpointer {
	cp := &Checkpointer{
		sqlDB:    sqlDB,
		requests: make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go cp.run()
	return cp
}

// Request schedules a checkpoint covering everything up to eventID. It never
// blocks; back-to-back requests coalesce.
func (c *Checkpointer) Request(eventID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.pending = eventID
	c.mu.Unlock()

	select {
	case c.requests <- struct{}{}:
	default:
	}
}

// LastDurable returns the id of the newest event known to be flushed to the
// main database file. Empty until the first checkpoint completes.
func (c *Checkpointer) LastDurable() string {
	if c == nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastDurable
}

// Flush runs a checkpoint synchronously. Used by tests and shutdown.
func (c *Checkpointer) Flush(ctx context.Context) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	target := c.pending
	c.mu.Unlock()
	if err := c.checkpoint(ctx); err != nil {
		return err
	}
	c.advance(target)
	return nil
}

// Stop drains the worker after a final flush.
func (c *Checkpointer) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
}

func (c *Checkpointer) run() {
	defer close(c.done)
	for {
		select {
		case <-c.stop:
			if err := c.Flush(context.Background()); err != nil {
				log.Printf("final checkpoint: %v", err)
			}
			return
		case <-c.requests:
			c.mu.Lock()
			target := c.pending
			c.mu.Unlock()
			if err := c.checkpoint(context.Background()); err != nil {
				log.Printf("checkpoint: %v", err)
				continue
			}
			c.advance(target)
		}
	}
}

func (c *Checkpointer) checkpoint(ctx context.Context) error {
	_, err := c.sqlDB.ExecContext(ctx, `PRAGMA wal_checkpoint(PASSIVE)`)
	return err
}

func (c *Checkpointer) advance(target string) {
	if target == "" {
		return
	}
	c.mu.Lock()
	if target > c.lastDurable {
		c.lastDurable = target
	}
	c.mu.Unlock()
}
