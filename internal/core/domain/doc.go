// Package domain contains the core business entities for the document
// retrieval pipeline: chunks, processing jobs, search results and the
// errors shared across services and adapters.
package domain
