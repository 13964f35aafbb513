package benchmark

import (
	"fmt"
	"testing"

	"github.com/yndnr/respkv-go/internal/storage/memory"
)

// BenchmarkStoreSet benchmarks inserting new keys into a prefilled store.
func BenchmarkStoreSet(b *testing.B) {
	value := []byte("value")

	runWithKeyCounts(b, SmallKeyCounts, func(b *testing.B, count int) {
		store := memory.New()
		prefillStore(store, count, value)

		keys := make([][]byte, b.N)
		for i := range keys {
			keys[i] = newKey()
		}

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			store.Set(keys[i], value)
		}

		b.StopTimer()
		reportMemory(b, "mem")
	})
}

// BenchmarkStoreGet benchmarks lookups of existing keys.
func BenchmarkStoreGet(b *testing.B) {
	runWithKeyCounts(b, KeyCounts, func(b *testing.B, count int) {
		store := memory.New()
		keys := prefillStore(store, count, []byte("value"))

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			if _, ok := store.Get(keys[i%len(keys)]); !ok {
				b.Fatal("key missing")
			}
		}
	})
}

// BenchmarkStoreDel benchmarks deleting keys that exist.
func BenchmarkStoreDel(b *testing.B) {
	store := memory.New()
	keys := prefillStore(store, b.N, []byte("value"))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		store.Del(keys[i])
	}
}

// BenchmarkStoreFlushAll benchmarks clearing a populated store.
func BenchmarkStoreFlushAll(b *testing.B) {
	runWithKeyCounts(b, SmallKeyCounts, func(b *testing.B, count int) {
		store := memory.New()

		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			b.StopTimer()
			prefillStore(store, count, []byte("v"))
			b.StartTimer()

			store.FlushAll()
		}
	})
}

// BenchmarkStoreParallel benchmarks mixed reads and writes from many
// goroutines contending on the store lock.
func BenchmarkStoreParallel(b *testing.B) {
	for _, readPercent := range []int{50, 90, 99} {
		b.Run(fmt.Sprintf("reads_%d", readPercent), func(b *testing.B) {
			store := memory.New()
			keys := prefillStore(store, 10000, []byte("value"))

			b.ResetTimer()
			b.ReportAllocs()

			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					key := keys[i%len(keys)]
					if i%100 < readPercent {
						store.Get(key)
					} else {
						store.Set(key, []byte("updated"))
					}
					i++
				}
			})
		})
	}
}
