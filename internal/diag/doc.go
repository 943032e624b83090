// Package diag defines the diagnostic model shared by the program loader,
// the ownership driver and the CLI.
//
// A Diagnostic carries a Severity, a numeric Code with a stable string form
// (OWN ownership, BRW borrows, CTR caller contract and expectations, PRG
// program documents, IO), a short Message, the primary Location
// (file, function, instruction index) and optional Notes.
//
// Producers emit through a Reporter, usually a BagReporter feeding a Bag.
// ReportBuilder chains notes before Emit. The Bag supports limits, sorting,
// deduplication and severity filtering.
//
// Package diag does no IO. Rendering lives in internal/diagfmt, apart from
// FormatShort which is used both by the CLI and by tests.
package diag
