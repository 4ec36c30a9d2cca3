package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math"
	"net"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	Addr        string
	Concurrency int
	Duration    time.Duration
	Queries     []string
}

type Stats struct {
	totalRequests  atomic.Int64
	successCount   atomic.Int64
	errorCount     atomic.Int64
	resultCounts   []int
	resultCountsMu sync.Mutex
	latencies      []time.Duration
	latenciesMu    sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		latencies:    make([]time.Duration, 0, 100000),
		resultCounts: make([]int, 0, 100000),
	}
}

func (s *Stats) RecordQuery(duration time.Duration, resultCount int, err error) {
	s.totalRequests.Add(1)

	if err != nil {
		s.errorCount.Add(1)
		return
	}
	s.successCount.Add(1)

	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()

	s.resultCountsMu.Lock()
	s.resultCounts = append(s.resultCounts, resultCount)
	s.resultCountsMu.Unlock()
}

func main() {
	addr := flag.String("addr", "localhost:9999", "address of the search daemon's TCP listener")
	concurrency := flag.Int("concurrency", 10, "number of concurrent connections")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	flag.Parse()

	queries := []string{
		"distributed systems",
		"search engine",
		"analytics platform",
		"indexing documents",
		"query processing",
		"cache optimization",
		"inverted index",
		"token stemming",
		"document ingestion",
		"boolean query",
	}

	cfg := Config{
		Addr:        *addr,
		Concurrency: *concurrency,
		Duration:    *duration,
		Queries:     queries,
	}

	fmt.Println("=== Boolean Search Daemon Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.Addr)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Queries:     %d unique\n", len(cfg.Queries))
	fmt.Println()

	stats := runLoadTest(cfg)
	printReport(stats, cfg.Duration)
}

func runLoadTest(cfg Config) *Stats {
	stats := NewStats()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")

	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			runWorker(ctx, cfg, workerID, stats)
		}(w)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

// runWorker holds one TCP connection to the daemon and fires queries
// sequentially over it until the context expires, reconnecting if the
// connection drops.
func runWorker(ctx context.Context, cfg Config, workerID int, stats *Stats) {
	queryIdx := workerID

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := net.DialTimeout("tcp", cfg.Addr, 5*time.Second)
		if err != nil {
			stats.RecordQuery(0, 0, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
				continue
			}
		}
		reader := bufio.NewReader(conn)
		if _, err := reader.ReadString('\n'); err != nil {
			conn.Close()
			stats.RecordQuery(0, 0, err)
			continue
		}

		for ctx.Err() == nil {
			query := cfg.Queries[queryIdx%len(cfg.Queries)]
			queryIdx++

			start := time.Now()
			count, err := sendQuery(ctx, conn, reader, query)
			duration := time.Since(start)
			stats.RecordQuery(duration, count, err)
			if err != nil {
				conn.Close()
				break
			}
		}
	}
}

// sendQuery writes one newline-terminated query and reads result lines
// until it hits a short idle period, since the wire protocol has no
// explicit end-of-results marker.
func sendQuery(ctx context.Context, conn net.Conn, reader *bufio.Reader, query string) (int, error) {
	if _, err := conn.Write([]byte(query + "\n")); err != nil {
		return 0, err
	}

	count := 0
	for {
		conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
		_, err := reader.ReadString('\n')
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return count, nil
			}
			return count, err
		}
		count++
	}
}

func printReport(stats *Stats, duration time.Duration) {
	total := stats.totalRequests.Load()
	success := stats.successCount.Load()
	errors := stats.errorCount.Load()

	fmt.Println("=== Results ===")
	fmt.Printf("Total Queries:   %d\n", total)
	fmt.Printf("Successful:      %d\n", success)
	fmt.Printf("Errors:          %d\n", errors)

	if total > 0 {
		errorRate := float64(errors) / float64(total) * 100
		fmt.Printf("Error Rate:      %.2f%%\n", errorRate)
		qps := float64(total) / duration.Seconds()
		fmt.Printf("Queries/sec:     %.2f\n", qps)
	}

	stats.latenciesMu.Lock()
	latencies := make([]time.Duration, len(stats.latencies))
	copy(latencies, stats.latencies)
	stats.latenciesMu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool {
			return latencies[i] < latencies[j]
		})

		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:    %s\n", latencies[0])
		fmt.Printf("Avg:    %s\n", avg)
		fmt.Printf("P50:    %s\n", percentile(latencies, 50))
		fmt.Printf("P90:    %s\n", percentile(latencies, 90))
		fmt.Printf("P95:    %s\n", percentile(latencies, 95))
		fmt.Printf("P99:    %s\n", percentile(latencies, 99))
		fmt.Printf("Max:    %s\n", latencies[len(latencies)-1])

		var sumSquared float64
		avgFloat := float64(avg)
		for _, l := range latencies {
			diff := float64(l) - avgFloat
			sumSquared += diff * diff
		}
		stddev := time.Duration(math.Sqrt(sumSquared / float64(len(latencies))))
		fmt.Printf("StdDev: %s\n", stddev)
	}

	stats.resultCountsMu.Lock()
	resultCounts := make([]int, len(stats.resultCounts))
	copy(resultCounts, stats.resultCounts)
	stats.resultCountsMu.Unlock()

	if len(resultCounts) > 0 {
		var sum int
		for _, c := range resultCounts {
			sum += c
		}
		fmt.Println()
		fmt.Println("=== Result Counts ===")
		fmt.Printf("Avg results/query: %.2f\n", float64(sum)/float64(len(resultCounts)))
	}

	if total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No queries completed. Is the daemon running?")
		os.Exit(1)
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
