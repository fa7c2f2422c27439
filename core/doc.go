// Package core contains the shared building blocks of the reagent framework:
// the Event/Content data model exchanged between agents, tools and clients,
// the Session conversation container, the per-run execution context and the
// store interfaces (sessions, memory, artifacts) that orchestration layers
// depend on.
package core
