// Package resilience provides fault-tolerance patterns for database access:
// a circuit breaker around the connection pool and retry with exponential
// backoff for transient connect failures.
//
//	breaker := circuitbreaker.NewDBCircuitBreaker(pool)
//	rows, err := breaker.QueryContext(ctx, query, args...)
//
//	err := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
//	    return pool.PingContext(ctx)
//	})
package resilience
