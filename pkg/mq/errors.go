package mq

import "errors"

var (
	// ErrBrokerNil is returned when a nil broker is provided
	ErrBrokerNil = errors.New("broker cannot be nil")

	// ErrTopicEmpty is returned when no topic name is provided
	ErrTopicEmpty = errors.New("topic name cannot be empty")

	// ErrSubscriptionEmpty is returned when no subscription name is provided
	ErrSubscriptionEmpty = errors.New("subscription name cannot be empty")

	// ErrTopicNotFound is returned when publishing or subscribing to a missing topic
	ErrTopicNotFound = errors.New("topic not found")

	// ErrSubscriptionNotFound is returned when pulling from a missing subscription
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrPullTimeout is returned by Broker.Pull when no message arrived in time
	ErrPullTimeout = errors.New("pull timed out")

	// ErrInvalidPayload is returned when a report does not match any supported schema
	ErrInvalidPayload = errors.New("invalid report payload")

	// ErrInconsistent is returned when a decoded report fails the latest schema after upgrade
	ErrInconsistent = errors.New("decoded report does not match the latest schema")
)
