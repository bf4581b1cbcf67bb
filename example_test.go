package lintas_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aretw0/lintas"
)

// Example_basic demonstrates how to open a store, save a dataset, and read it back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "lintas-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	store, err := lintas.Open(ctx, tmpDir)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	// 1. Save a Dataset
	d := lintas.Dataset{
		ID:         "d1",
		Title:      "Volume Kendaraan",
		Category:   "Lalu Lintas",
		Year:       2023,
		UploadDate: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload:    lintas.Payload{"rows": "120"},
	}
	if _, err := store.Put(ctx, d); err != nil {
		log.Fatal(err)
	}

	// 2. Read it back
	got, found, err := store.Get(ctx, "d1")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Found: %v, title: %s, rows: %s\n", found, got.Title, got.Payload["rows"])
	// Output:
	// Found: true, title: Volume Kendaraan, rows: 120
}

// ExampleNewTypedService demonstrates how to decode the payload into a struct.
func ExampleNewTypedService() {
	ctx := context.Background()
	store, err := lintas.Open(ctx, "example-typed", lintas.WithAdapter(lintas.AdapterMemory))
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	// Define your payload model
	type Counts struct {
		Station string `json:"station"`
		Cars    int    `json:"cars"`
	}

	counts := lintas.NewTypedService[Counts](store)

	rec := &lintas.Record[Counts]{
		Dataset: lintas.NewDataset("Hitungan Harian", "", "Lalu Lintas", 2024, nil),
		Data:    Counts{Station: "Makassar-01", Cars: 4210},
	}
	id, err := counts.Put(ctx, rec)
	if err != nil {
		log.Fatal(err)
	}

	back, _, err := counts.Get(ctx, id)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Station: %s, cars: %d\n", back.Data.Station, back.Data.Cars)
	// Output:
	// Station: Makassar-01, cars: 4210
}

// ExamplePaginate shows the 1-based paging used by listings.
// ExampleWatchSource feeds store changes into a lifecycle event loop.
func ExampleWatchSource() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := lintas.Open(ctx, "example-watch", lintas.WithAdapter(lintas.AdapterMemory))
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	src, err := lintas.WatchSource(ctx, store, "upload-*")
	if err != nil {
		log.Fatal(err)
	}
	if err := src.Start(ctx); err != nil {
		log.Fatal(err)
	}

	for _, id := range []string{"draft-1", "upload-1"} {
		if _, err := store.Put(ctx, lintas.Dataset{ID: id, Category: "Lalu Lintas", Year: 2024}); err != nil {
			log.Fatal(err)
		}
	}

	select {
	case e := <-src.Events():
		fmt.Println(e.String())
	case <-time.After(time.Second):
		fmt.Println("no event")
	}

	// Output:
	// PUT upload-1
}

func ExamplePaginate() {
	items := make([]lintas.Dataset, 5)
	for i := range items {
		items[i].ID = fmt.Sprintf("d%d", i+1)
	}

	for _, d := range lintas.Paginate(items, 2, 2) {
		fmt.Println(d.ID)
	}
	fmt.Println(len(lintas.Paginate(items, 4, 2)))
	// Output:
	// d3
	// d4
	// 0
}
