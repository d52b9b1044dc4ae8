// Package health отдаёт liveness, readiness и подробный отчёт о зависимостях сервиса.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// Status представляет статус компонента
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

const defaultCheckTimeout = 2 * time.Second

// Check представляет проверку здоровья компонента
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response представляет ответ health check
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Checker проверяет один компонент. ctx ограничен таймаутом проверки.
type Checker interface {
	Check(ctx context.Context) Check
}

// Handler обрабатывает health check запросы
type Handler struct {
	mu           sync.RWMutex
	checkers     map[string]Checker
	version      string
	startTime    time.Time
	checkTimeout time.Duration
}

// NewHandler создаёт новый health handler
func NewHandler(version string) *Handler {
	return &Handler{
		checkers:     make(map[string]Checker),
		version:      version,
		startTime:    time.Now(),
		checkTimeout: defaultCheckTimeout,
	}
}

// SetCheckTimeout меняет таймаут одной проверки.
func (h *Handler) SetCheckTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	h.mu.Lock()
	h.checkTimeout = timeout
	h.mu.Unlock()
}

// RegisterChecker регистрирует проверку компонента
func (h *Handler) RegisterChecker(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Run выполняет все проверки и возвращает сводный статус.
func (h *Handler) Run(ctx context.Context) (Status, map[string]Check) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	checkers := make(map[string]Checker, len(h.checkers))
	for name, checker := range h.checkers {
		names = append(names, name)
		checkers[name] = checker
	}
	timeout := h.checkTimeout
	h.mu.RUnlock()
	sort.Strings(names)

	checks := make(map[string]Check, len(names))
	overall := StatusHealthy
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		check := checkers[name].Check(checkCtx)
		cancel()
		checks[name] = check

		switch {
		case check.Status == StatusUnhealthy:
			overall = StatusUnhealthy
		case check.Status == StatusDegraded && overall == StatusHealthy:
			overall = StatusDegraded
		}
	}
	return overall, checks
}

// ServeHTTP обрабатывает HTTP запрос
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	overall, checks := h.Run(r.Context())

	response := Response{
		Status:        overall,
		Timestamp:     time.Now(),
		Checks:        checks,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// LivenessHandler простой liveness probe (всегда возвращает 200)
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadinessHandler отвечает 503, пока хотя бы одна проверка нездорова.
// Деградация не снимает сервис с трафика.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	overall, _ := h.Run(r.Context())
	if overall == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// SimpleChecker простая проверка с функцией
type SimpleChecker struct {
	name    string
	checkFn func(ctx context.Context) error
}

// NewSimpleChecker создаёт простую проверку
func NewSimpleChecker(name string, checkFn func(ctx context.Context) error) *SimpleChecker {
	return &SimpleChecker{
		name:    name,
		checkFn: checkFn,
	}
}

// Check выполняет проверку
func (c *SimpleChecker) Check(ctx context.Context) Check {
	start := time.Now()
	err := c.checkFn(ctx)
	check := Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}

// OutboxBacklogChecker помечает сервис деградировавшим, если outbox не успевает публиковать.
type OutboxBacklogChecker struct {
	repo       domain.OutboxRepository
	maxPending int
	maxAge     time.Duration
	now        func() time.Time
}

// NewOutboxBacklogChecker создаёт проверку backlog. Нулевой порог отключает соответствующее условие.
func NewOutboxBacklogChecker(repo domain.OutboxRepository, maxPending int, maxAge time.Duration) *OutboxBacklogChecker {
	return &OutboxBacklogChecker{
		repo:       repo,
		maxPending: maxPending,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Check читает статистику outbox. Ошибка чтения делает компонент нездоровым.
func (c *OutboxBacklogChecker) Check(ctx context.Context) Check {
	start := time.Now()
	check := Check{Name: "outbox", Status: StatusHealthy}

	stats, err := c.repo.Stats(ctx)
	check.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
		return check
	}

	var age time.Duration
	if stats.PendingCount > 0 && !stats.OldestPendingAt.IsZero() {
		age = c.now().Sub(stats.OldestPendingAt)
	}
	switch {
	case c.maxPending > 0 && stats.PendingCount > c.maxPending:
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("%d pending messages exceed limit %d", stats.PendingCount, c.maxPending)
	case c.maxAge > 0 && age > c.maxAge:
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("oldest pending message is %s old", age.Truncate(time.Second))
	}
	return check
}
