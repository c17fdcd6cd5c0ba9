// Package snapshot persists serialized host trees.
//
// A Store takes a key and an HTML document and returns where it was
// written. FileStore writes under a local directory; S3Store uploads to a
// bucket. Capture serializes a hostdom node and stores it in one call:
//
//	store, _ := snapshot.NewFromConfig(cfg.Snapshot)
//	loc, err := snapshot.Capture(ctx, store, "checkout/step-2", doc.DocumentElement())
package snapshot
