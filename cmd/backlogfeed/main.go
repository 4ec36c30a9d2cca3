// Command backlogfeed publishes (source, value) document records onto the
// Kafka backlog topic that searchd's backlog.Drain consumes at startup. It
// exists for seeding and exercising the backlog path outside of whatever
// upstream system normally produces those records.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/adithya-search/boolsearch/pkg/kafka"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "comma-separated Kafka broker addresses")
	topic := flag.String("topic", "document-backlog", "backlog topic to publish to")
	input := flag.String("input", "-", "path to a TSV file of source\\tvalue lines, or - for stdin")
	flag.Parse()

	producer := kafka.NewProducer(strings.Split(*brokers, ","), *topic)
	defer producer.Close()

	var r *os.File
	if *input == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(*input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var batch []kafka.Event
	var published int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		source, value, ok := strings.Cut(line, "\t")
		if !ok || source == "" || value == "" {
			slog.Warn("skipping malformed line", "line", line)
			continue
		}
		batch = append(batch, kafka.Event{
			Key:   source,
			Value: map[string]string{"source": source, "value": value},
		})
		if len(batch) >= 100 {
			if err := producer.PublishBatch(ctx, batch); err != nil {
				fmt.Fprintf(os.Stderr, "publishing batch: %v\n", err)
				os.Exit(1)
			}
			published += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := producer.PublishBatch(ctx, batch); err != nil {
			fmt.Fprintf(os.Stderr, "publishing final batch: %v\n", err)
			os.Exit(1)
		}
		published += len(batch)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "reading input: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("published %d records to topic %q\n", published, *topic)
}
