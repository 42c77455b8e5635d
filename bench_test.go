package fastonce_test

import (
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-fastonce"
)

// mirrors the contended scenario: several callers racing a single expensive
// initialization
const (
	benchContendedCallers = 5
	benchContendedWait    = time.Millisecond
)

func BenchmarkOnce_trivial(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var once fastonce.Once
		ran := false
		once.Do(func() { ran = true })
		if !ran {
			b.Fatal(`expected the initializer to run`)
		}
	}
}

func BenchmarkSyncOnce_trivial(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var once sync.Once
		ran := false
		once.Do(func() { ran = true })
		if !ran {
			b.Fatal(`expected the initializer to run`)
		}
	}
}

func BenchmarkOnce_fastPath(b *testing.B) {
	var once fastonce.Once
	once.Do(func() {})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		once.Do(func() { b.Fatal(`should not be called`) })
	}
}

func BenchmarkSyncOnce_fastPath(b *testing.B) {
	var once sync.Once
	once.Do(func() {})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		once.Do(func() { b.Fatal(`should not be called`) })
	}
}

func BenchmarkOnce_contended(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var once fastonce.Once
		var wg sync.WaitGroup
		start := make(chan struct{})
		for j := 0; j < benchContendedCallers; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				once.Do(func() { time.Sleep(benchContendedWait) })
			}()
		}
		close(start)
		wg.Wait()
	}
}

func BenchmarkSyncOnce_contended(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var once sync.Once
		var wg sync.WaitGroup
		start := make(chan struct{})
		for j := 0; j < benchContendedCallers; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				once.Do(func() { time.Sleep(benchContendedWait) })
			}()
		}
		close(start)
		wg.Wait()
	}
}
