package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/lintas"
)

var categories = []string{"Lalu Lintas", "Kecelakaan", "Parkir", "Angkutan Umum"}

func main() {
	count := flag.Int("count", 1000, "Number of datasets to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark store after running")
	flag.Parse()

	// 1. Setup Namespace
	benchDir, err := os.MkdirTemp("", "lintas_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	service, err := lintas.New(ctx, benchDir, lintas.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	defer service.Close()

	// 2. Write
	fmt.Printf("Writing %d datasets in %s...\n", *count, benchDir)
	start := time.Now()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < *count; i++ {
		d := lintas.Dataset{
			ID:          fmt.Sprintf("bench-%06d", i),
			Title:       fmt.Sprintf("Dataset %d", i),
			Description: "Generated for benchmarking",
			Category:    categories[i%len(categories)],
			Year:        2015 + i%10,
			UploadDate:  base.Add(time.Duration(i) * time.Minute),
			Payload:     lintas.Payload{"rows": i * 10},
		}
		if _, err := service.Put(ctx, d); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Write took: %v\n", time.Since(start))

	// 3. Reads
	measure("GetAll", func() (int, error) {
		all, err := service.GetAll(ctx)
		return len(all), err
	})
	measure("GetByCategory (index)", func() (int, error) {
		ds, err := service.GetByCategory(ctx, categories[0])
		return len(ds), err
	})
	measure("GetByYear (index)", func() (int, error) {
		ds, err := service.GetByYear(ctx, 2020)
		return len(ds), err
	})
	measure("GetByUploadDate (range)", func() (int, error) {
		ds, err := service.GetByUploadDate(ctx, base, base.Add(time.Hour))
		return len(ds), err
	})
	measure("Search (scan)", func() (int, error) {
		ds, err := service.Search(ctx, "dataset 1")
		return len(ds), err
	})
}

func measure(name string, run func() (int, error)) {
	start := time.Now()
	n, err := run()
	if err != nil {
		panic(err)
	}
	fmt.Printf("%-26s %12v (Items: %d)\n", name, time.Since(start), n)
}
