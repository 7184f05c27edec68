// Package transcoder runs the container encoder on worker goroutines behind a
// request/response message protocol.
//
// Each Request carries a correlation ID; the pool routes every Response back
// to the caller that submitted the matching ID, so responses may complete in
// any order when more than one worker is configured. Source bytes are copied
// on the way in and encoder panics are turned into error responses, so a bad
// input can never take a worker down or leak state into the next request.
package transcoder
