package pipeline

import "errors"

var (
	ErrSubscriberNil = errors.New("pipeline: subscriber is nil")
	ErrLoaderNil     = errors.New("pipeline: loader is nil")
	ErrSpoolNil      = errors.New("pipeline: spool is nil")
	ErrSenderNil     = errors.New("pipeline: sender is nil")
)
