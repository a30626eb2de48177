// Package history records compliance check runs in a durable store
// under the project directory, giving an audit trail of when each
// metadata record was evaluated and with what outcome.
//
// The store is append-only from the engine's point of view; a retention
// scheduler purges old runs on a cron schedule.
package history
