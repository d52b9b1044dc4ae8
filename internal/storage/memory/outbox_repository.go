package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
	outboxStatusFailed  = "failed"
)

// outboxRecord хранит сообщение и служебные поля для in-memory реализации.
type outboxRecord struct {
	msg        domain.OutboxMessage
	status     string
	attemptCnt int
	seq        int64
	createdAt  time.Time
	updatedAt  time.Time
}

// OutboxRepository — in-memory outbox; Status отдаёт статус сообщения для проверок.
type OutboxRepository interface {
	domain.OutboxStore
	Status(id string) (string, bool)
}

// outboxRepositoryInMemory — in-memory хранилище transactional outbox.
type outboxRepositoryInMemory struct {
	mu      sync.RWMutex
	records map[string]*outboxRecord
	seq     int64
	now     func() time.Time
}

// NewOutboxRepository создаёт in-memory реализацию outbox.
func NewOutboxRepository() OutboxRepository {
	return newOutboxRepository()
}

func newOutboxRepository() *outboxRepositoryInMemory {
	return &outboxRepositoryInMemory{
		records: make(map[string]*outboxRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue сохраняет событие со статусом pending и возвращает его с идентификатором.
func (r *outboxRepositoryInMemory) Enqueue(_ context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Payload = append([]byte(nil), msg.Payload...)
	now := r.now()
	r.seq++
	r.records[msg.ID] = &outboxRecord{
		msg:       msg,
		status:    outboxStatusPending,
		seq:       r.seq,
		createdAt: now,
		updatedAt: now,
	}
	return msg, nil
}

// PullPending возвращает до limit самых старых сообщений со статусом pending.
func (r *outboxRepositoryInMemory) PullPending(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	pending := r.pendingLocked()
	if len(pending) > limit {
		pending = pending[:limit]
	}
	result := make([]domain.OutboxMessage, 0, len(pending))
	for _, rec := range pending {
		result = append(result, rec.msg)
	}
	return result, nil
}

// Stats возвращает размер backlog и время создания самого старого pending сообщения.
func (r *outboxRepositoryInMemory) Stats(_ context.Context) (domain.OutboxStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := r.pendingLocked()
	stats := domain.OutboxStats{PendingCount: len(pending)}
	if len(pending) > 0 {
		stats.OldestPendingAt = pending[0].createdAt
	}
	return stats, nil
}

// MarkSent обновляет статус события после успешной публикации.
func (r *outboxRepositoryInMemory) MarkSent(_ context.Context, id string) error {
	return r.mark(id, outboxStatusSent)
}

// MarkFailed фиксирует окончательную ошибку публикации.
func (r *outboxRepositoryInMemory) MarkFailed(_ context.Context, id string) error {
	return r.mark(id, outboxStatusFailed)
}

func (r *outboxRepositoryInMemory) mark(id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	record.status = status
	record.attemptCnt++
	record.updatedAt = r.now()
	return nil
}

// Status возвращает статус сообщения (используется в тестах).
func (r *outboxRepositoryInMemory) Status(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return "", false
	}
	return record.status, true
}

// PurgeProcessed удаляет старые sent и failed сообщения, начиная с самых давних.
func (r *outboxRepositoryInMemory) PurgeProcessed(_ context.Context, before time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	processed := make([]*outboxRecord, 0)
	for _, rec := range r.records {
		if rec.status != outboxStatusPending && !rec.updatedAt.After(before) {
			processed = append(processed, rec)
		}
	}
	sort.Slice(processed, func(i, j int) bool { return processed[i].seq < processed[j].seq })
	if limit > 0 && len(processed) > limit {
		processed = processed[:limit]
	}
	for _, rec := range processed {
		delete(r.records, rec.msg.ID)
	}
	return len(processed), nil
}

func (r *outboxRepositoryInMemory) pendingLocked() []*outboxRecord {
	pending := make([]*outboxRecord, 0, len(r.records))
	for _, rec := range r.records {
		if rec.status == outboxStatusPending {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].seq < pending[j].seq })
	return pending
}

var (
	_ domain.OutboxRepository = (*outboxRepositoryInMemory)(nil)
	_ domain.OutboxPurger     = (*outboxRepositoryInMemory)(nil)
)
