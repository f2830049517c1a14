// Package fetch augments HTTP requests with incremental progress
// notification and delivery of the newly arrived portion of a
// streaming response body, rather than only the cumulative buffer.
//
// # Building a Dispatcher
//
// Use [New] with functional options:
//
//	d, err := fetch.New(
//		fetch.WithTimeout(10 * time.Second),
//		fetch.WithUserAgent("myapp/1.0"),
//		fetch.WithDefaults(fetch.Defaults{Chunking: true}),
//	)
//
// # Dispatching
//
// [Dispatcher.Dispatch] returns immediately with a [Result] that
// settles when the exchange completes:
//
//	r := d.Dispatch(ctx, "https://api.example.com/stream")
//	r.OnProgress(func(ev transport.ProgressEvent, chunk []byte) {
//		if chunk != nil {
//			process(chunk) // only the newly received bytes
//		}
//	})
//	resp, err := r.Response() // blocks until settled
//
// Chunks are computed, not delivered natively: for a single listener,
// concatenating every chunk equals the final response text. Dispatches
// that send a body also expose [Result.OnUploadProgress].
//
// # Supporting packages
//
// [github.com/outpostkit/fetch/transport] models the exchange handle,
// [github.com/outpostkit/fetch/download] streams chunk events to disk,
// [github.com/outpostkit/fetch/csrf] mirrors a cookie token into a
// header on state-mutating requests, and
// [github.com/outpostkit/fetch/throttle] rate-limits dispatches.
package fetch
