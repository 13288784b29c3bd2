// Package index is the local reference-data index (characters, weapons,
// achievement categories) persisted under the "dataIndex" key and shared by
// every session on the same storage backend.
package index
