// Package persist реализует общий протокол сохранения сущностей:
// поиск записи, перенос полей, валидация, вето, запись, уведомление.
package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// Model — сущность, проходящая через протокол сохранения.
type Model interface {
	EntityID() int64
	SetEntityID(id int64)
	AddErrors(errs domain.FieldErrors)
	HasErrors() bool
	ClearErrors()
}

// Outcome — результат сохранения, не являющийся ошибкой.
type Outcome int

const (
	// OutcomeSaved — запись сохранена, идентификатор проставлен на модель.
	OutcomeSaved Outcome = iota
	// OutcomeInvalid — модель не прошла валидацию, ошибки полей лежат на модели.
	OutcomeInvalid
	// OutcomeVetoed — сохранение отменено обработчиком BeforeSave.
	OutcomeVetoed
	// OutcomeFailed — сохранение прервано ошибкой поиска или записи.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeVetoed:
		return "vetoed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Hooks — наблюдатели протокола сохранения.
// BeforeSave может отменить сохранение, вернув false. AfterSave вызывается ровно один раз после записи.
type Hooks[M any] struct {
	BeforeSave func(ctx context.Context, model M) bool
	AfterSave  func(ctx context.Context, model M)
}

// Chain объединяет обработчики: BeforeSave останавливается на первом вето,
// AfterSave вызывается для всех в порядке передачи.
func Chain[M any](hooks ...Hooks[M]) Hooks[M] {
	return Hooks[M]{
		BeforeSave: func(ctx context.Context, model M) bool {
			for _, h := range hooks {
				if h.BeforeSave != nil && !h.BeforeSave(ctx, model) {
					return false
				}
			}
			return true
		},
		AfterSave: func(ctx context.Context, model M) {
			for _, h := range hooks {
				if h.AfterSave != nil {
					h.AfterSave(ctx, model)
				}
			}
		},
	}
}

// Steps — операции конкретной сущности, из которых собирается протокол.
type Steps[M Model, R any] struct {
	// Entity — имя сущности для логов и метрик.
	Entity string
	// NotFound — sentinel, которым Find сообщает об отсутствии записи.
	NotFound error

	Find func(ctx context.Context, id int64) (R, error)
	New  func() R
	// Map переносит поля модели в запись и возвращает ошибки нормализации.
	Map func(ctx context.Context, model M, record R) (R, domain.FieldErrors)
	// Validate проверяет запись. Может быть nil.
	Validate func(ctx context.Context, model M, record R) domain.FieldErrors

	Insert func(ctx context.Context, record R) (int64, error)
	Update func(ctx context.Context, record R) error
}

// Recorder принимает метрики сохранения.
type Recorder interface {
	RecordSaveStarted()
	RecordSave(entity, outcome string, duration time.Duration)
}

type options struct {
	logger   *log.Entry
	recorder Recorder
}

// Option настраивает Runner.
type Option func(*options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecorder задаёт приёмник метрик.
func WithRecorder(recorder Recorder) Option {
	return func(o *options) {
		o.recorder = recorder
	}
}

// Runner выполняет протокол сохранения для сущности M с записью хранилища R.
type Runner[M Model, R any] struct {
	steps    Steps[M, R]
	hooks    Hooks[M]
	logger   *log.Entry
	recorder Recorder
}

// NewRunner собирает Runner из шагов сущности и наблюдателей.
func NewRunner[M Model, R any](steps Steps[M, R], hooks Hooks[M], opts ...Option) *Runner[M, R] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = log.WithField("component", "persist")
	}
	return &Runner[M, R]{
		steps:    steps,
		hooks:    hooks,
		logger:   logger.WithField("entity", steps.Entity),
		recorder: o.recorder,
	}
}

// Save выполняет протокол: validate -> veto -> commit -> notify.
// Ошибка возвращается только при отсутствии записи с идентификатором модели
// и при сбоях хранилища; невалидная модель и вето дают Outcome без ошибки.
func (r *Runner[M, R]) Save(ctx context.Context, model M) (Outcome, error) {
	started := time.Now()
	if r.recorder != nil {
		r.recorder.RecordSaveStarted()
	}

	outcome, err := r.save(ctx, model)

	label := outcome.String()
	if r.recorder != nil {
		r.recorder.RecordSave(r.steps.Entity, label, time.Since(started))
	}

	entry := r.logger.WithFields(log.Fields{
		"entity_id": model.EntityID(),
		"outcome":   label,
	})
	if err != nil {
		entry.WithError(err).Warn("entity save failed")
	} else {
		entry.Debug("entity save finished")
	}
	return outcome, err
}

func (r *Runner[M, R]) save(ctx context.Context, model M) (Outcome, error) {
	model.ClearErrors()

	id := model.EntityID()
	var record R
	if id != 0 {
		found, err := r.steps.Find(ctx, id)
		if err != nil {
			if r.steps.NotFound != nil && errors.Is(err, r.steps.NotFound) {
				return OutcomeFailed, fmt.Errorf("no %s exists with id %d: %w", r.steps.Entity, id, err)
			}
			return OutcomeFailed, fmt.Errorf("find %s %d: %w", r.steps.Entity, id, err)
		}
		record = found
	} else {
		record = r.steps.New()
	}

	record, mapErrs := r.steps.Map(ctx, model, record)
	if r.steps.Validate != nil {
		model.AddErrors(r.steps.Validate(ctx, model, record))
	}
	model.AddErrors(mapErrs)
	if model.HasErrors() {
		return OutcomeInvalid, nil
	}

	if r.hooks.BeforeSave != nil && !r.hooks.BeforeSave(ctx, model) {
		return OutcomeVetoed, nil
	}

	if id == 0 {
		newID, err := r.steps.Insert(ctx, record)
		if err != nil {
			return OutcomeFailed, fmt.Errorf("insert %s: %w", r.steps.Entity, err)
		}
		model.SetEntityID(newID)
	} else {
		if err := r.steps.Update(ctx, record); err != nil {
			return OutcomeFailed, fmt.Errorf("update %s %d: %w", r.steps.Entity, id, err)
		}
	}

	if r.hooks.AfterSave != nil {
		r.hooks.AfterSave(ctx, model)
	}
	return OutcomeSaved, nil
}
