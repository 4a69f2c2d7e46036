package credit_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/shopassist/credit"
	"github.com/jonwraymond/shopassist/store"
)

// staticSession is a fixed authentication state for the examples.
type staticSession bool

func (s staticSession) IsAuthenticated(context.Context) bool { return bool(s) }

func ExampleNewMeter() {
	ctx := context.Background()
	meter, err := credit.NewMeter(store.NewMemoryStore(), credit.Config{})
	if err != nil {
		fmt.Println("construct failed:", err)
		return
	}

	fmt.Println("Allowance:", meter.MaxActions())
	fmt.Println("Tracked:", meter.TrackAction(ctx, "chat_query"))
	fmt.Println("Remaining:", meter.Remaining(ctx))
	// Output:
	// Allowance: 10
	// Tracked: true
	// Remaining: 9
}

func ExampleMeter_TrackAction() {
	ctx := context.Background()
	meter, _ := credit.NewMeter(store.NewMemoryStore(), credit.Config{MaxActions: 2})

	fmt.Println(meter.TrackAction(ctx, "chat_query"))
	fmt.Println(meter.TrackAction(ctx, "chat_query"))

	// The allowance is gone; further calls fail without mutating state.
	fmt.Println(meter.TrackAction(ctx, "chat_query"))
	fmt.Println("Limit reached:", meter.IsLimitReached(ctx))
	// Output:
	// true
	// true
	// false
	// Limit reached: true
}

func ExampleMeter_Reset() {
	ctx := context.Background()
	meter, _ := credit.NewMeter(store.NewMemoryStore(), credit.Config{MaxActions: 3})

	meter.TrackAction(ctx, "chat_query")
	meter.TrackAction(ctx, "chat_query")
	fmt.Println("Before reset:", meter.Remaining(ctx))

	meter.Reset(ctx)
	fmt.Println("After reset:", meter.Remaining(ctx))
	// Output:
	// Before reset: 1
	// After reset: 3
}

func ExampleNewGate() {
	ctx := context.Background()
	meter, _ := credit.NewMeter(store.NewMemoryStore(), credit.Config{MaxActions: 1})

	guest, _ := credit.NewGate(staticSession(false), meter)

	fmt.Println("Allowed:", guest.IsActionAllowed(ctx, "chat_query"))
	fmt.Println("Tracked:", guest.TrackAPIAction(ctx, "chat_query"))
	fmt.Println("Allowed after spend:", guest.IsActionAllowed(ctx, "chat_query"))
	// Output:
	// Allowed: true
	// Tracked: true
	// Allowed after spend: false
}

func ExampleGate_Remaining() {
	ctx := context.Background()
	meter, _ := credit.NewMeter(store.NewMemoryStore(), credit.Config{})

	guest, _ := credit.NewGate(staticSession(false), meter)
	n, unlimited := guest.Remaining(ctx)
	fmt.Printf("Guest: n=%d unlimited=%v\n", n, unlimited)

	member, _ := credit.NewGate(staticSession(true), meter)
	_, unlimited = member.Remaining(ctx)
	fmt.Printf("Authenticated: unlimited=%v\n", unlimited)
	// Output:
	// Guest: n=10 unlimited=false
	// Authenticated: unlimited=true
}

func ExampleGate_TrackAPIAction() {
	ctx := context.Background()
	meter, _ := credit.NewMeter(store.NewMemoryStore(), credit.Config{MaxActions: 5})

	// Authenticated sessions never spend guest credits.
	member, _ := credit.NewGate(staticSession(true), meter)
	for i := 0; i < 20; i++ {
		member.TrackAPIAction(ctx, "chat_query")
	}

	fmt.Println("Guest credits left:", meter.Remaining(ctx))
	// Output:
	// Guest credits left: 5
}
