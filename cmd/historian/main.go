// cmd/historian/main.go is an asynchronous historian service that pops turn
// records from a Redis queue and persists them to a PostgreSQL database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/jason-s-yu/makao/internal/cache"
	"github.com/jason-s-yu/makao/internal/database"
)

// HistorianService drains the turn queue in batches and marks sessions
// abandoned when their records stop arriving.
type HistorianService struct {
	redisClient  *redis.Client
	batchSize    int
	flushDelay   time.Duration
	inactivity   time.Duration
	lastActivity sync.Map // map[uuid.UUID]time.Time per session

	batchMu  sync.Mutex
	batch    []cache.TurnRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService from environment
// variables or defaults.
func NewHistorianService() *HistorianService {
	batchSize := cache.GetEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := cache.GetEnvInt("HISTORIAN_FLUSH_MS", 500)
	inactivitySec := cache.GetEnvInt("SESSION_INACTIVITY_TIMEOUT_SEC", 600)

	rdb := redis.NewClient(&redis.Options{
		Addr: cache.GetEnv("REDIS_ADDR", "localhost:6379"),
		DB:   cache.GetEnvInt("REDIS_DB", 0),
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		inactivity:  time.Duration(inactivitySec) * time.Second,
		batch:       make([]cache.TurnRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects the database and starts the queue and inactivity loops.
func (hs *HistorianService) Run() {
	database.ConnectDB()

	go hs.readRedisLoop()
	go hs.inactivityLoop()

	log.Println("makao-historian service started.")
	<-hs.ctx.Done()
	hs.flushBatchToDB()
	log.Println("makao-historian shutting down.")
}

// readRedisLoop continuously pops turn records off the queue and batches
// them, flushing on size or on the flush interval.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	queueName := cache.GetEnv("HISTORIAN_QUEUE_NAME", cache.DefaultQueueName)

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatchToDB()

		default:
			// BLPop with a short timeout so context cancellation is handled.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				if hs.ctx.Err() != nil {
					return
				}
				log.Printf("[ERROR] BLPop: %v", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			var record cache.TurnRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid turn record: %v", err)
				continue
			}

			hs.lastActivity.Store(record.SessionID, time.Now())
			hs.appendToBatch(record)
		}
	}
}

func (hs *HistorianService) appendToBatch(record cache.TurnRecord) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, record)
	if len(hs.batch) >= hs.batchSize {
		hs.flushLocked()
	}
}

func (hs *HistorianService) flushBatchToDB() {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.flushLocked()
}

// flushLocked writes the pending batch with a single COPY. Caller holds
// batchMu.
func (hs *HistorianService) flushLocked() {
	if len(hs.batch) == 0 {
		return
	}
	rows := make([][]any, 0, len(hs.batch))
	for _, rec := range hs.batch {
		payload, err := json.Marshal(rec.Payload)
		if err != nil {
			log.Printf("skipping unmarshalable payload for session %s turn %d: %v", rec.SessionID, rec.TurnIndex, err)
			continue
		}
		rows = append(rows, []any{
			rec.SessionID, rec.TurnIndex, rec.Actor, payload, time.UnixMilli(rec.Timestamp),
		})
	}
	hs.batch = hs.batch[:0]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.InsertTurnRecords(ctx, rows); err != nil {
		log.Printf("[ERROR] flush turn records: %v", err)
	} else {
		log.Printf("Flushed %d turn records to DB.", len(rows))
	}
}

// inactivityLoop periodically marks sessions abandoned once their records
// stop arriving for the configured window.
func (hs *HistorianService) inactivityLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()
			hs.lastActivity.Range(func(key, val any) bool {
				sessionID, ok1 := key.(uuid.UUID)
				last, ok2 := val.(time.Time)
				if ok1 && ok2 && now.Sub(last) > hs.inactivity {
					hs.markAbandoned(sessionID)
					hs.lastActivity.Delete(sessionID)
				}
				return true
			})
		}
	}
}

func (hs *HistorianService) markAbandoned(sessionID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.MarkSessionAbandoned(ctx, sessionID); err != nil {
		log.Printf("failed to mark session %s abandoned: %v", sessionID, err)
	} else {
		log.Printf("Marked session %s as 'abandoned' due to inactivity.", sessionID)
	}
}

// Stop gracefully stops the historian service.
func (hs *HistorianService) Stop() {
	hs.cancelFn()
}

func main() {
	hs := NewHistorianService()
	go hs.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	hs.Stop()
	log.Println("Historian shutdown complete.")
}
