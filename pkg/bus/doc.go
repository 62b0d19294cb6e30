/*
Package bus provides the per-execution, type-indexed resource map.

Values are keyed by their static type, so a Bus holds at most one value of any type:

	b := bus.New()
	bus.Insert(b, RequestID("r-42"))
	id, ok := bus.Get[RequestID](b)

Cross-cutting collectors, such as the execution Timeline, travel on the same Bus as
business resources.
*/
package bus
