// Package harness runs query scenarios: seed documents, run queries, and
// compare what came back with what the scenario expects.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	fixtures:
//	  - collection: coupons
//	    file: coupons.ndjson        # relative to the scenario file
//	  - collection: people
//	    documents:                  # or inline YAML documents
//	      - {name: Ann, age: 31}
//	steps:
//	  - query: select userEmail from coupons where couponState = 4
//	    expect:
//	      columns: [userEmail]
//	      rows:
//	        - ["a@x.com"]
//	  - query: select name from people order by name
//	    expect:
//	      error: UNSUPPORTED
//
// # Expectations
//
//   - columns: the output aliases in order (omit for wildcard queries)
//   - rows: every record, in store order, as rendered text
//   - count: the number of records, when the rows themselves do not matter
//   - error: the code of the parse, translation or execution error
//
// Values are rendered the way the vertical output shows them, except that
// null and missing values read "null" and dates use RFC 3339. A wildcard
// record renders as "key: value" cells, one per stored field.
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory embedded store whose
// generated ids are sequential (doc-1, doc-2, ...), so results are identical
// across runs and can be compared with golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/coupons.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
