/*
Package std provides ready-made transitions for common pipeline steps.

All of them are generic over the value type T, the resources bundle R and the
fault type E, so they slot into any circuit:

	circuit := axon.Start[int, Deps, error]("pricing").
		Then(std.Add[int, Deps](10)).
		Then(std.Filter[int, Deps, error](func(v int) bool { return v < 100 }))
*/
package std
