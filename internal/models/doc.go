// Package models defines domain entities and persistence interfaces for the Discogs collection uploader.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing inventory rows and Discogs API data
//   - [LocalRecord] : One row of the local CSV inventory
//   - [RemoteRelease] : A release instance in the user's Discogs collection
//   - [CollectionPage] : One page of the collection listing, with [Pagination]
//
// 2. Persistent Entities: Database-backed models recording sync history
//   - [SyncRun] : One invocation of the sync with aggregate counts and status
//   - [RecordOutcome] : The result of processing a single [LocalRecord] within a run
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
