// Package repositories implements SQLite persistence for all domain entities.
//
// Key Implementations:
//   - [PersonRepository] : people, with partial updates
//   - [SystemRepository] : systems
//   - [LineRepository] : lines joined with their system name
//   - [MediaRepository] : media with person links, filtered listings and transactional link re-sync
//   - [UserRepository] : API accounts and their password hashes
//
// Missing rows are reported as [shared.ErrNotFound] and storage constraint violations as
// [shared.ErrConflict], with a readable message picked by matching the raw SQLite message.
// Repositories never hold a result set open while running another statement, which keeps
// single-connection (in-memory) databases usable.
package repositories
