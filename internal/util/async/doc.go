// Package async runs independent operations concurrently.
//
// [ForEach] fans a function out over an index range with a bound on the
// number of goroutines in flight. The inventory reader uses it to fetch
// networks in parallel while keeping results in listing order.
package async
