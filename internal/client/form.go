package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type FormState int

const (
	StateClosed FormState = iota
	StateCreateEditing
	StateUpdateEditing
	StateSubmitting
)

func (s FormState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateCreateEditing:
		return "create-editing"
	case StateUpdateEditing:
		return "update-editing"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("FormState(%d)", int(s))
	}
}

type Mode int

const (
	ModeCreate Mode = iota + 1
	ModeUpdate
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeUpdate:
		return "update"
	default:
		return "none"
	}
}

var (
	ErrInvalidTransition = errors.New("form: invalid state transition")
	ErrUnknownField      = errors.New("form: unknown field")
)

type FormFields struct {
	Name       string
	Email      string
	Phone      string
	Department string
	Salary     string
}

func (f FormFields) missing() []string {
	var out []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", f.Name},
		{"email", f.Email},
		{"phone", f.Phone},
		{"department", f.Department},
		{"salary", f.Salary},
	} {
		if strings.TrimSpace(field.value) == "" {
			out = append(out, field.name)
		}
	}
	return out
}

type Mutator interface {
	Create(ctx context.Context, input EmployeeInput) (Employee, error)
	Update(ctx context.Context, id string, input EmployeeInput) (Employee, error)
}

type Refresher interface {
	Refresh(ctx context.Context) error
}

// Outcome is the settled result of a submit. Err carries the mutation
// failure; RefreshErr the failure of the re-read that follows it.
type Outcome struct {
	Mode       Mode
	Record     Employee
	Err        error
	RefreshErr error
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

type FormOption func(*FormController)

// WithRefreshDelay waits d after a submit settles before re-reading the
// listing. Zero re-reads immediately.
func WithRefreshDelay(d time.Duration) FormOption {
	return func(f *FormController) {
		f.refreshDelay = d
	}
}

func WithFormLogger(logger *zap.Logger) FormOption {
	return func(f *FormController) {
		if logger != nil {
			f.logger = logger.Named("client.form")
		}
	}
}

// FormController is the create/edit form state machine. A submit always
// returns the form to closed and then refreshes the listing, whatever the
// outcome of the mutation.
type FormController struct {
	mu           sync.Mutex
	state        FormState
	fields       FormFields
	target       Employee
	image        io.Reader
	imageName    string
	mutator      Mutator
	refresher    Refresher
	refreshDelay time.Duration
	logger       *zap.Logger
}

func NewFormController(mutator Mutator, refresher Refresher, opts ...FormOption) *FormController {
	f := &FormController{
		mutator:   mutator,
		refresher: refresher,
		logger:    zap.L().Named("client.form"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FormController) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *FormController) Fields() FormFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *FormController) OpenCreate() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateClosed {
		return fmt.Errorf("%w: open create from %s", ErrInvalidTransition, f.state)
	}
	f.reset()
	f.state = StateCreateEditing
	return nil
}

// OpenEdit opens the form pre-populated with record.
func (f *FormController) OpenEdit(record Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateClosed {
		return fmt.Errorf("%w: open edit from %s", ErrInvalidTransition, f.state)
	}
	f.reset()
	f.target = record
	f.fields = FormFields{
		Name:       record.Name,
		Email:      record.Email,
		Phone:      record.Phone,
		Department: record.Department,
		Salary:     record.Salary,
	}
	f.state = StateUpdateEditing
	return nil
}

func (f *FormController) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.editing() {
		return fmt.Errorf("%w: set field while %s", ErrInvalidTransition, f.state)
	}

	switch strings.ToLower(name) {
	case "name":
		f.fields.Name = value
	case "email":
		f.fields.Email = value
	case "phone":
		f.fields.Phone = value
	case "department":
		f.fields.Department = value
	case "salary":
		f.fields.Salary = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

func (f *FormController) SetProfileImage(name string, r io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.editing() {
		return fmt.Errorf("%w: attach image while %s", ErrInvalidTransition, f.state)
	}
	f.image = r
	f.imageName = name
	return nil
}

// Cancel closes an editing form. It is rejected while a submit is in flight.
func (f *FormController) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateClosed:
		return nil
	case StateSubmitting:
		return fmt.Errorf("%w: cancel while submitting", ErrInvalidTransition)
	}
	f.reset()
	f.state = StateClosed
	return nil
}

// Submit sends the form. A *ValidationError is returned, with no network
// call and no state change, when a required field is empty. Otherwise the
// mutation runs, the form closes and the listing is refreshed; the settled
// result is reported in the Outcome.
func (f *FormController) Submit(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if !f.editing() {
		state := f.state
		f.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: submit while %s", ErrInvalidTransition, state)
	}
	if missing := f.fields.missing(); len(missing) > 0 {
		f.mu.Unlock()
		return Outcome{}, &ValidationError{Missing: missing}
	}

	mode := ModeCreate
	if f.state == StateUpdateEditing {
		mode = ModeUpdate
	}
	targetID := f.target.ID
	input := EmployeeInput{
		Name:         f.fields.Name,
		Email:        f.fields.Email,
		Phone:        f.fields.Phone,
		Department:   f.fields.Department,
		Salary:       f.fields.Salary,
		ProfileImage: f.image,
		ImageName:    f.imageName,
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	out := Outcome{Mode: mode}
	if mode == ModeCreate {
		out.Record, out.Err = f.mutator.Create(ctx, input)
	} else {
		out.Record, out.Err = f.mutator.Update(ctx, targetID, input)
	}
	if out.Err != nil {
		f.logger.Warn("submit failed", zap.Stringer("mode", mode), zap.Error(out.Err))
	}

	f.mu.Lock()
	f.reset()
	f.state = StateClosed
	f.mu.Unlock()

	out.RefreshErr = f.refresh(ctx)
	return out, nil
}

func (f *FormController) refresh(ctx context.Context) error {
	if f.refresher == nil {
		return nil
	}
	if f.refreshDelay > 0 {
		timer := time.NewTimer(f.refreshDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if err := f.refresher.Refresh(ctx); err != nil {
		f.logger.Warn("refresh after submit failed", zap.Error(err))
		return err
	}
	return nil
}

func (f *FormController) editing() bool {
	return f.state == StateCreateEditing || f.state == StateUpdateEditing
}

func (f *FormController) reset() {
	f.fields = FormFields{}
	f.target = Employee{}
	f.image = nil
	f.imageName = ""
}
