package domain

import (
	"fmt"
	"reflect"
	"strconv"
)

// EventKey is implemented by every event type; the mnemonic is the column
// key of the transition table.
type EventKey interface {
	Mnemonic() string
	// Parameterised reports whether the event carries an argument.
	Parameterised() bool
}

// ArgParser is implemented by parameterised events able to decode their
// argument from text.
type ArgParser interface {
	EventKey
	ParseArg(raw string) (any, error)
}

// Event is a simple trigger without payload.
type Event struct {
	mnemonic string
}

// NewEvent creates a simple event.
func NewEvent(mnemonic string) Event {
	return Event{mnemonic: mnemonic}
}

// Mnemonic implements EventKey.
func (e Event) Mnemonic() string { return e.mnemonic }

// Parameterised implements EventKey.
func (e Event) Parameterised() bool { return false }

func (e Event) String() string {
	return fmt.Sprintf("event '%s'", e.mnemonic)
}

// EventArg restricts parameterised events to scalar arguments whose string
// form is meaningful as a branch key.
type EventArg interface {
	~string | ~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// ParamEvent is an event carrying an argument of type T when fired.
type ParamEvent[T EventArg] struct {
	mnemonic string
}

// NewParamEvent creates a parameterised event.
func NewParamEvent[T EventArg](mnemonic string) ParamEvent[T] {
	return ParamEvent[T]{mnemonic: mnemonic}
}

// Mnemonic implements EventKey.
func (e ParamEvent[T]) Mnemonic() string { return e.mnemonic }

// Parameterised implements EventKey.
func (e ParamEvent[T]) Parameterised() bool { return true }

// ParamType returns the name of the argument type.
func (e ParamEvent[T]) ParamType() string {
	var zero T
	return reflect.TypeOf(zero).String()
}

// Parse converts the textual form of an argument (e.g. a form value) into T.
func (e ParamEvent[T]) Parse(raw string) (T, error) {
	var v T
	rv := reflect.ValueOf(&v).Elem()
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return v, fmt.Errorf("%s: %w", e, err)
		}
		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, rv.Type().Bits())
		if err != nil {
			return v, fmt.Errorf("%s: %w", e, err)
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, rv.Type().Bits())
		if err != nil {
			return v, fmt.Errorf("%s: %w", e, err)
		}
		rv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, rv.Type().Bits())
		if err != nil {
			return v, fmt.Errorf("%s: %w", e, err)
		}
		rv.SetFloat(f)
	}
	return v, nil
}

// ParseArg is Parse for callers that only hold an EventKey.
func (e ParamEvent[T]) ParseArg(raw string) (any, error) {
	return e.Parse(raw)
}

func (e ParamEvent[T]) String() string {
	return fmt.Sprintf("event '%s' (%s)", e.mnemonic, e.ParamType())
}

// Standard events shared by most journeys.
var (
	EventNext           = NewEvent("_NEXT")
	EventNoneOfTheAbove = NewEvent("_NOTA")
	EventYes            = NewEvent("_YES")
	EventNo             = NewEvent("_NO")
	EventCancel         = NewEvent("_CANCEL")
)
