// Package transport models one HTTP exchange as an observable Handle.
//
// A Handle progresses through the readiness states
//
//	unsent -> opened -> headers-received -> receiving-body -> done
//
// while accumulating the response text seen so far. Listeners attach
// with [Handle.OnProgress] and [Handle.OnStateChange]; exchanges that
// send a request body expose an [Upload] sub-object whose events
// report byte counts only.
//
// One goroutine drives a Handle through its states; that goroutine
// serializes all listener invocations. Handles are created through a
// [Factory], which callers may override to observe or script an
// exchange in tests:
//
//	h := transport.NewHandle()
//	h.Open()
//	h.ReceiveResponse(200, nil, 6)
//	h.ReceiveBody([]byte("abc"))
//	h.ReceiveBody([]byte("def"))
//	h.Finish()
//
// Most callers never construct a Handle directly; the
// [github.com/outpostkit/fetch] dispatcher does it for them and
// exposes the handle through its result.
package transport
