// Package services implements the driving port interfaces.
// The orchestrator here contains the pipeline business logic and
// coordinates calls to driven ports (stores, extractors, embedding
// providers).
package services
