// Package async provides a small generic future primitive for fan-out
// concurrency. The notification engine uses it to dispatch a recipient's
// channels in parallel and to run the members of a bulk batch concurrently
// while consuming results in submission order.
//
//	f := async.Async(ctx, target, send)
//	res, err := f.Await()
package async
