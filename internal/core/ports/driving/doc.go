// Package driving provides interfaces consumed by external actors
// (primary/inbound ports): the CLI, the document-management collaborator
// and the AI-drafting collaborator.
package driving
