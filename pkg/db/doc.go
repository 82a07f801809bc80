// Package db defines the contract between the report pipeline and report
// storage backends.
//
// A backend implements Driver. Callers hold a *Client, which wraps any
// Driver and checks the contract's preconditions before delegating: Init
// needs an uninitialized backend, everything else an initialized one, chunk
// sizes must not be negative and loaded data must be valid under the latest
// report schema.
//
// Load may fail with ErrOverload when the backend cannot take more data
// right now. Drivers never retry on their own; the caller decides when to
// try again. Throttle turns a concurrency limit into such overload errors.
//
// MemoryDriver keeps everything in process memory and serves as the
// reference backend for tests and local runs.
package db
