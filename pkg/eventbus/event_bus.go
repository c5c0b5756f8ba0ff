package eventbus

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/vantagecrm/vantage/pkg/serrors"
)

// EventBus is an in-process publish/subscribe bus. Handlers are plain
// functions; a published event is delivered to every subscriber whose
// parameter list matches the published argument types.
type EventBus interface {
	Publish(args ...interface{})
	Subscribe(handler interface{})
	Unsubscribe(handler interface{})
	Clear()
	SubscribersCount() int
}

// EventBusWithError adds an error-returning publish used by the outbox
// relay, where handler failure must surface so delivery can be retried.
type EventBusWithError interface {
	EventBus
	PublishE(args ...any) error
}

var (
	ErrNoSubscribers        = serrors.NewError("EVENTBUS_NO_SUBSCRIBERS", "no matching subscribers", "")
	ErrInvalidHandlerReturn = serrors.NewError("EVENTBUS_INVALID_HANDLER_RETURN", "invalid handler return signature", "")
)

type bus struct {
	log      *logrus.Logger
	handlers []interface{}
}

func NewEventPublisher(log *logrus.Logger) EventBusWithError {
	return &bus{log: log}
}

// matches reports whether handler (a func) accepts the given argument
// list, treating interface parameters structurally.
func matches(handler interface{}, args []interface{}) bool {
	t := reflect.TypeOf(handler)
	if t.Kind() != reflect.Func || t.NumIn() != len(args) {
		return false
	}
	for i, arg := range args {
		param := t.In(i)
		if arg == nil {
			if param.Kind() != reflect.Interface && param.Kind() != reflect.Ptr {
				return false
			}
			continue
		}
		at := reflect.TypeOf(arg)
		if param.Kind() == reflect.Interface {
			if !at.Implements(param) {
				return false
			}
			continue
		}
		if !at.AssignableTo(param) {
			return false
		}
	}
	return true
}

func (b *bus) Publish(args ...interface{}) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = reflect.ValueOf(arg)
	}

	delivered := false
	for _, h := range b.handlers {
		if !matches(h, args) {
			continue
		}
		v := reflect.ValueOf(h)
		func() {
			defer func() {
				if r := recover(); r != nil && b.log != nil {
					b.log.Errorf("eventbus: handler %s panicked with args %v: %v", v.Type(), args, r)
				}
			}()
			v.Call(in)
			delivered = true
		}()
	}

	if !delivered && b.log != nil {
		b.log.Warnf("eventbus: no matching subscribers for args: %v", in)
	}
}

func (b *bus) PublishE(args ...any) error {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = reflect.ValueOf(arg)
	}

	delivered := false
	var errs []error

	for _, h := range b.handlers {
		if !matches(h, args) {
			continue
		}
		delivered = true
		v := reflect.ValueOf(h)

		func() {
			defer func() {
				if r := recover(); r != nil {
					errs = append(errs, fmt.Errorf("eventbus: handler %s panicked: %v", v.Type(), r))
				}
			}()

			out := v.Call(in)
			switch len(out) {
			case 0:
				return
			case 1:
				ret := out[0]
				if ret.Type() != reflect.TypeOf((*error)(nil)).Elem() {
					errs = append(errs, fmt.Errorf("%w: handler %s returns %s", ErrInvalidHandlerReturn, v.Type(), ret.Type()))
					return
				}
				if !ret.IsNil() {
					errs = append(errs, ret.Interface().(error))
				}
			default:
				errs = append(errs, fmt.Errorf("%w: handler %s returns %d values", ErrInvalidHandlerReturn, v.Type(), len(out)))
			}
		}()
	}

	if !delivered {
		return ErrNoSubscribers
	}
	return errors.Join(errs...)
}

func (b *bus) Subscribe(handler interface{}) {
	if reflect.TypeOf(handler).Kind() != reflect.Func {
		panic("eventbus: handler must be a function")
	}
	b.handlers = append(b.handlers, handler)
}

func (b *bus) Unsubscribe(handler interface{}) {
	ptr := reflect.ValueOf(handler).Pointer()
	for i, h := range b.handlers {
		if reflect.ValueOf(h).Pointer() == ptr {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return
		}
	}
}

func (b *bus) Clear() {
	b.handlers = nil
}

func (b *bus) SubscribersCount() int {
	return len(b.handlers)
}
