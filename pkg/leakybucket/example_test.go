package leakybucket_test

import (
	"context"
	"fmt"

	"github.com/driprate/driprate/pkg/leakybucket"
	"github.com/driprate/driprate/pkg/storage"
)

func ExampleBucket() {
	ctx := context.Background()
	store := storage.NewMemory()

	b, err := leakybucket.New(ctx, "demo", store,
		leakybucket.WithCapacity(3), leakybucket.WithLeakRate(1))
	if err != nil {
		panic(err)
	}

	b.Leak()
	if err := b.Fill(2); err != nil {
		panic(err)
	}
	b.Overflow()
	fmt.Println(b.IsFull())

	if err := b.Fill(1); err != nil {
		panic(err)
	}
	b.Overflow()
	fmt.Println(b.IsFull())

	if err := b.Save(ctx); err != nil {
		panic(err)
	}

	// Output:
	// false
	// true
}
