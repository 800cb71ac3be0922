package pipeline

import (
	"runtime"
	"sync"
)

// Resolver handles one unique word. Implementations must be safe for
// concurrent use; frequency lookups are independent and idempotent.
type Resolver func(word string)

// ResolveWords fans the word list out over a bounded worker pool. With
// workers <= 0 the pool sizes itself to the CPU count.
func ResolveWords(words []string, workers int, fn Resolver) {
	if len(words) == 0 || fn == nil {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}

	jobs := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for word := range jobs {
				fn(word)
			}
		}()
	}

	for _, word := range words {
		jobs <- word
	}
	close(jobs)
	wg.Wait()
}
