// Package fixtures provides recording doubles for command registration tests.
package fixtures

import (
	"fmt"

	command "github.com/goliatone/go-command"
)

// RecordingRegistry records handlers passed to RegisterCommand in order.
type RecordingRegistry struct {
	Handlers []any
	Err      error
}

// NewRecordingRegistry returns an empty registry recorder.
func NewRecordingRegistry() *RecordingRegistry {
	return &RecordingRegistry{}
}

// RegisterCommand records handler, or fails with Err when it is set.
func (r *RecordingRegistry) RegisterCommand(handler any) error {
	if r.Err != nil {
		return r.Err
	}
	r.Handlers = append(r.Handlers, handler)
	return nil
}

// CronRegistration is one recorded schedule.
type CronRegistration struct {
	Config  command.HandlerConfig
	Handler any
}

// CronRecorder stands in for a go-command cron registrar.
type CronRecorder struct {
	Registrations []CronRegistration
	err           error
}

// NewCronRecorder returns a recorder that accepts every registration.
func NewCronRecorder() *CronRecorder {
	return &CronRecorder{}
}

// Fail makes later registrations return err.
func (c *CronRecorder) Fail(err error) {
	c.err = err
}

// Registrar returns the recording registrar function.
func (c *CronRecorder) Registrar() func(command.HandlerConfig, any) error {
	return func(cfg command.HandlerConfig, handler any) error {
		if c.err != nil {
			return c.err
		}
		c.Registrations = append(c.Registrations, CronRegistration{Config: cfg, Handler: handler})
		return nil
	}
}

// Fire runs the i-th recorded job the way a scheduler tick would.
func (c *CronRecorder) Fire(i int) error {
	if i < 0 || i >= len(c.Registrations) {
		return fmt.Errorf("fixtures: no cron registration %d", i)
	}
	job, ok := c.Registrations[i].Handler.(func() error)
	if !ok {
		return fmt.Errorf("fixtures: cron registration %d has handler %T", i, c.Registrations[i].Handler)
	}
	return job()
}
