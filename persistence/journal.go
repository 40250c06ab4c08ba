// persistence/journal.go
package persistence

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wfunc/fishduel/logger"
	"github.com/wfunc/fishduel/models"
)

const writeTimeout = 5 * time.Second

type entry struct {
	room  *models.RoomRecord
	catch *models.CatchRecord
}

// Journal 异步写入比赛记录. Record* never blocks the caller; when the queue
// is full the record is dropped and counted.
type Journal struct {
	db      Database
	queue   chan entry
	wg      sync.WaitGroup
	once    sync.Once
	mutex   sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewJournal 创建并启动写入协程
func NewJournal(db Database, buffer int) *Journal {
	if buffer < 1 {
		buffer = 1
	}
	j := &Journal{
		db:    db,
		queue: make(chan entry, buffer),
	}
	j.wg.Add(1)
	go j.run()
	return j
}

func (j *Journal) RecordRoom(rec models.RoomRecord) {
	j.enqueue(entry{room: &rec})
}

func (j *Journal) RecordCatch(rec models.CatchRecord) {
	j.enqueue(entry{catch: &rec})
}

func (j *Journal) enqueue(e entry) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	if j.closed {
		return
	}
	select {
	case j.queue <- e:
	default:
		j.dropped.Add(1)
		logger.Log.Warnw("journal record dropped", "error", ErrJournalFull)
	}
}

// Dropped 返回因队列满而丢弃的记录数
func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

func (j *Journal) run() {
	defer j.wg.Done()
	for e := range j.queue {
		j.write(e)
	}
}

func (j *Journal) write(e entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	switch {
	case e.room != nil:
		err = j.db.SaveRoomRecord(ctx, *e.room)
	case e.catch != nil:
		err = j.db.SaveCatchRecord(ctx, *e.catch)
	}
	if err != nil {
		logger.Log.Errorw("journal write failed", "error", err)
	}
}

// Close 停止接收新记录并等待队列写完
func (j *Journal) Close() {
	j.once.Do(func() {
		j.mutex.Lock()
		j.closed = true
		close(j.queue)
		j.mutex.Unlock()
		j.wg.Wait()
	})
}
