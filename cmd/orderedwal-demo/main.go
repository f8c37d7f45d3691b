package main

import (
	"fmt"

	"github.com/orderedwal/orderedwal"
)

func main() {
	fmt.Println("=== Unique mode ===")
	uniqueDemo()

	fmt.Println("\n=== MVCC mode ===")
	mvccDemo()
}

func uniqueDemo() {
	w, err := orderedwal.Open(orderedwal.DefaultOptions().WithCapacity(1 << 20))
	if err != nil {
		panic(err)
	}
	defer w.Close()

	wr, err := orderedwal.OpenWriter(w)
	if err != nil {
		panic(err)
	}
	defer wr.Close()

	must(wr.Insert(0, []byte("alpha"), []byte("1")))
	must(wr.Insert(0, []byte("beta"), []byte("2")))
	must(wr.Insert(0, []byte("alpha"), []byte("1-updated"))) // last-writer-wins

	r := orderedwal.NewReader(w)
	if e, ok := r.Get([]byte("alpha")); ok {
		fmt.Printf("alpha = %s\n", e.Value)
	}

	must(wr.Delete(0, []byte("beta")))
	if _, ok := r.Get([]byte("beta")); !ok {
		fmt.Println("beta deleted")
	}

	r.Iter(func(e orderedwal.Entry) bool {
		fmt.Printf("iter: %s = %s\n", e.Key, e.Value)
		return true
	})
}

func mvccDemo() {
	w, err := orderedwal.Open(orderedwal.DefaultOptions().WithCapacity(1 << 20).WithMVCC(true))
	if err != nil {
		panic(err)
	}
	defer w.Close()

	wr, err := orderedwal.OpenWriter(w)
	if err != nil {
		panic(err)
	}
	defer wr.Close()

	must(wr.Insert(1, []byte("k"), []byte("v1")))
	must(wr.Insert(2, []byte("k"), []byte("v2")))
	must(wr.Insert(3, []byte("k"), []byte("v3")))

	r := orderedwal.NewReader(w)
	for _, v := range []uint64{1, 2, 3, 10} {
		if e, ok := r.GetAt(v, []byte("k")); ok {
			fmt.Printf("GetAt(%d) = %s (written at version %d)\n", v, e.Value, e.Version)
		}
	}

	must(wr.RangeUpdate(4, orderedwal.IncludedBound([]byte("a")), orderedwal.UnboundedBound(), []byte("shadowed")))
	if e, ok := r.GetAt(5, []byte("k")); ok {
		fmt.Printf("after range update: k = %s\n", e.Value)
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
