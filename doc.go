// Package lintas is the Composition Root for the dataset store.
//
// It connects the core store logic (pkg/core) with the storage adapters
// (pkg/adapters) using the Hexagonal Architecture pattern.
//
// The store keeps uploaded traffic datasets on the local machine so they survive
// restarts. Each dataset is a flat record: a unique ID, the descriptive fields
// (title, description, category, year, upload date) and an opaque payload.
//
// Features:
//
//   - **Durable by default**: records live in a LevelDB directory and every write is one transaction.
//   - **Secondary indexes**: exact lookups by category and year, range scans by upload date.
//   - **Versioned schema**: opening a store upgrades it; a newer on-disk schema is refused.
//   - **Shared handles**: concurrent opens of one store share a single connection.
//   - **Typed Retrieval**: Generic wrapper (`NewTypedService[T]`) decodes the payload into your struct.
//   - **Change events**: `Watch` streams puts and deletes, filtered by ID glob.
//
// Usage:
//
//	svc, err := lintas.Open(ctx, "./data", lintas.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	id, err := svc.Put(ctx, lintas.NewDataset("Volume Kendaraan", "", "Lalu Lintas", 2023, nil))
package lintas
