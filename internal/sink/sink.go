// Package sink delivers generated statements to their destination: a text
// file, a live database, or both.
package sink

import (
	"context"
	stderrors "errors"

	"github.com/mcncl/json2sql/internal/models"
)

// Sink receives statements in input order.
type Sink interface {
	Write(ctx context.Context, stmt models.Statement) error
	Close() error
}

// Aborter is implemented by sinks that can discard pending work when a run
// fails. The driver calls Abort instead of Close in that case.
type Aborter interface {
	Abort() error
}

// Multi fans every statement out to several sinks.
type Multi []Sink

// Write implements Sink, stopping at the first failure.
func (m Multi) Write(ctx context.Context, stmt models.Statement) error {
	for _, s := range m {
		if err := s.Write(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Sink and closes every member.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return stderrors.Join(errs...)
}

// Abort implements Aborter. Members without Abort are closed.
func (m Multi) Abort() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, Abort(s))
	}
	return stderrors.Join(errs...)
}

// Abort aborts s if it supports it and closes it otherwise.
func Abort(s Sink) error {
	if a, ok := s.(Aborter); ok {
		return a.Abort()
	}
	return s.Close()
}
