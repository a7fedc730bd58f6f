// Package domain holds the favorite entity shared by the favorites API and
// the client-side sync engine: the server row, the client record, the wire
// item exchanged between them, rating normalization and the error taxonomy.
package domain
