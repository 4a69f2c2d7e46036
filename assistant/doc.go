// Package assistant is the consumer-facing facade of the shopping
// assistant client. A single call, Client.Send, composes the response
// cache, the credit gate, and the remote backend into one answer.
//
// # Send flow
//
// Send resolves a query in order:
//
//  1. Cache lookup. A hit is returned immediately with Cached=true.
//     Cached answers are free: no gate check, no credit spend, no
//     remote call.
//  2. Gate check. A denied guest gets a limit-reached failure and the
//     backend is never contacted.
//  3. Credit spend. Guests consume one action before the remote call
//     is issued. A failed remote call does not refund the action; the
//     accounting is pessimistic.
//  4. Remote call through a retry envelope with doubling backoff and a
//     per-attempt timeout that grows with the attempt number.
//  5. Successful results are cached and returned with Cached=false.
//
// # Errors
//
// Failures surface as *QueryError with a Kind (network, server,
// timeout, parse, limit-reached, unknown), an HTTP status where one
// exists, and a user-facing message via UserMessage. Callers match
// the limit condition with errors.Is against ErrLimitReached. Context
// cancellation propagates unchanged.
//
// # Usage
//
//	client, err := assistant.NewClient(assistant.Config{
//	    Cache:   responseCache,
//	    Gate:    gate,
//	    Querier: querier,
//	    Session: session,
//	})
//	if err != nil {
//	    return err
//	}
//
//	resp, err := client.Send(ctx, "running shoes under $100", history)
//	if err != nil {
//	    var qe *assistant.QueryError
//	    if errors.As(err, &qe) {
//	        fmt.Println(qe.UserMessage())
//	    }
//	    return err
//	}
//	fmt.Println(resp.Summary, resp.Cached)
package assistant
