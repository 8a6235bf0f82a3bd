package ratelimit_test

import (
	"context"
	"fmt"
	"time"

	"github.com/driprate/driprate/pkg/ratelimit"
	"github.com/driprate/driprate/pkg/storage"
)

func ExampleLimiter() {
	limiter, err := ratelimit.New("ip", 2, time.Minute, storage.NewMemory())
	if err != nil {
		panic(err)
	}

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Check(context.Background(), "203.0.113.7")
		if err != nil {
			panic(err)
		}
		fmt.Println(allowed)
	}

	// Output:
	// true
	// true
	// false
}
