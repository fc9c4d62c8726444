// Package events carries notifications about parameter changes.
//
// The parameter service emits a ParameterEvent after every committed write,
// delete and key rotation. Handlers such as the metrics collector subscribe
// through an EventEmitter without the service knowing who listens.
package events
