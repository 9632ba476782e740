// Package models defines domain entities and persistence interfaces for the kidspot appliance.
//
// The only persistent entity is [Tag], the mapping from a physical RFID
// tag UID to its playback target and display metadata. Tags implement
// the [Model] interface providing ID generation, timestamps, validation,
// and soft delete support. The [Repository] interface defines standard
// CRUD operations for database access.
package models
