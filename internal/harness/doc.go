// Package harness runs filter scenarios against a throwaway SQLite database.
//
// A scenario names a CUE schema, seeds rows and lists cases. Each case is a
// filter document (a file or an inline query) plus the outcome it must
// produce: matched ids, the echo tree, the SQL text, portability warnings
// or a compile error.
//
//	name: owners
//	description: joins through the owner relation
//	schema: ../schema
//	seed: ../rows.yaml
//	cases:
//	  - name: free or unowned
//	    file: ../filters/free-or-unowned.yaml
//	    expect:
//	      ids: [u2, u3, u4]
//	      portable: false
//	  - name: empty IN matches nothing
//	    query:
//	      entity: User
//	      filter: {op: IN, field: region, values: []}
//	    expect:
//	      ids: []
//
// Every Run opens a fresh in-memory database, so scenarios are isolated and
// results are deterministic. Results can be compared against golden files
// with RunWithGolden (tests) or CompareGolden (the CLI).
package harness
