// Package async provides bounded parallel task execution.
//
// [RunBounded] runs independent operations on at most limit goroutines,
// waits for every started task, and stops starting new ones once the
// context is cancelled. The polishing run uses it to work on several
// nodes at once.
package async
