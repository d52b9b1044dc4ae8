// Package gateway содержит адаптеры платёжных шлюзов, выбираемые по классу способа оплаты.
// Адаптеры только хранят и проверяют настройки: сетевых вызовов к шлюзам здесь нет.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/commerce/internal/validation"
)

// ErrUnknownGateway возвращается, если для класса не зарегистрирован адаптер.
var ErrUnknownGateway = errors.New("unknown gateway class")

// Adapter — настройки конкретного платёжного шлюза.
type Adapter interface {
	// Class возвращает дискриминатор шлюза, совпадающий с PaymentMethod.Class.
	Class() string
	// Name возвращает отображаемое название шлюза.
	Name() string
	// Attributes возвращает нормализованные настройки для сохранения.
	Attributes() map[string]any
	// Validate возвращает сообщения об ошибках настроек.
	Validate() []string
}

// Factory строит адаптер из сохранённых настроек.
type Factory func(settings map[string]any) (Adapter, error)

// Registry сопоставляет классы шлюзов с фабриками адаптеров.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register добавляет или заменяет фабрику для класса.
func (r *Registry) Register(class string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[class] = factory
}

// Resolve строит адаптер для класса из переданных настроек.
func (r *Registry) Resolve(class string, settings map[string]any) (Adapter, error) {
	r.mu.RLock()
	factory, ok := r.factories[class]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGateway, class)
	}
	return factory(settings)
}

// Classes возвращает зарегистрированные классы в алфавитном порядке.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	classes := make([]string, 0, len(r.factories))
	for class := range r.factories {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// settingsAdapter хранит типизированные настройки S и проверяет их тегами validate.
type settingsAdapter[S any] struct {
	class     string
	name      string
	settings  S
	validator *validation.Validator
}

func (a *settingsAdapter[S]) Class() string { return a.class }

func (a *settingsAdapter[S]) Name() string { return a.name }

func (a *settingsAdapter[S]) Attributes() map[string]any {
	raw, err := json.Marshal(a.settings)
	if err != nil {
		return map[string]any{}
	}
	attrs := make(map[string]any)
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return map[string]any{}
	}
	return attrs
}

func (a *settingsAdapter[S]) Validate() []string {
	return a.validator.Struct(&a.settings).Messages()
}

// SettingsFactory возвращает фабрику адаптера, раскладывающего настройки в структуру S.
// defaults задаёт значения полей, отсутствующих в сохранённых настройках.
func SettingsFactory[S any](class, name string, defaults S, v *validation.Validator) Factory {
	if v == nil {
		v = validation.New()
	}
	return func(settings map[string]any) (Adapter, error) {
		adapter := &settingsAdapter[S]{
			class:     class,
			name:      name,
			settings:  defaults,
			validator: v,
		}
		if len(settings) == 0 {
			return adapter, nil
		}
		raw, err := json.Marshal(settings)
		if err != nil {
			return nil, fmt.Errorf("encode %s settings: %w", class, err)
		}
		if err := json.Unmarshal(raw, &adapter.settings); err != nil {
			return nil, fmt.Errorf("decode %s settings: %w", class, err)
		}
		return adapter, nil
	}
}
