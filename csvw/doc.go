// Package csvw implements the CSV-on-the-Web metadata model: parsing and
// normalizing tabular metadata documents, merging them with embedded dialect
// hints and user-supplied overrides, validating the result, and interpreting
// CSV rows against it to produce annotated cell values and, optionally, RDF
// triples.
//
// The processing pipeline has three stages:
//
//   - Metadata: Parse reads a JSON metadata document into a TableGroup graph,
//     inferring node types from their key sets where @type is absent.
//     ResolveColumn resolves a column's inherited properties, and
//     Metadata.Merge combines two documents with the receiver winning
//     conflicts (user-supplied metadata merged over embedded header
//     metadata).
//
//   - Row/Cell: once a TableGroup validates, Table.Rows iterates the
//     underlying CSV source using the table's Dialect, and each Row's cells
//     are interpreted against their Column's datatype and facets, producing
//     typed Cell values and non-fatal per-cell CellErrors.
//
//   - Emit: EmitRowTriples walks an interpreted row and produces Triples
//     using the column's aboutUrl/propertyUrl/valueUrl templates, falling
//     back to a minted blank node for row subjects that have no aboutUrl.
//
// Example (parse, validate, iterate):
//
//	group, err := csvw.Parse(ctx, metadataReader, csvw.OptBaseURL(base))
//	if err != nil {
//	    // handle error
//	}
//	if errs := group.Validate(); len(errs) > 0 {
//	    // handle errs
//	}
//	for _, idx := range group.TableGroup.TableIdx {
//	    table := group.Tables[idx]
//	    rows, err := table.Rows(ctx, csvSource, 0)
//	    if err != nil {
//	        // handle error
//	    }
//	    for rows.Next() {
//	        row := rows.Row()
//	        // process row.Cells
//	    }
//	}
//
// JSON-LD expansion of prefix-qualified annotation properties and notes is
// backed by github.com/piprate/json-gold; `json` cell values are
// canonicalized by this package's own JCS implementation
// (jsoncanonicalizer.go). HTTP metadata loading honors Cache-Control
// and Expires response headers via github.com/pquerna/cachecontrol.
package csvw
