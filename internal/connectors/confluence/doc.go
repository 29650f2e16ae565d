// Package confluence implements a harvester for the historical contents
// (content versions) stored on a Confluence server.
//
// # Architecture
//
// The harvester follows the driven port pattern defined in [driven.Harvester].
// It comprises the following components:
//
//   - Client: builds summary and version requests on top of a [driven.Transport]
//   - Summaries: follows the server continuation links and flattens the
//     pages into a lazy sequence of content summaries
//   - WalkVersions: walks the version history of one content item from
//     version 1 until the version flagged as latest
//   - Normalize: resolves the content URL and the ancestor page URLs
//   - Harvester: flat-maps summaries into version walks and wraps every
//     accepted version in an envelope
//
// # Checkpoints
//
// Summaries are requested with the CQL query
// lastModified>='<checkpoint>' order by lastModified. CQL only honours
// minutes, so the checkpoint is truncated in the query while every version
// is re-checked against its full resolution. A summary's change time is not
// authoritative for its earlier versions, which is why older versions are
// still fetched (and discarded) on the way to the newer ones.
//
// # Error Handling
//
// A version fetch answered with 404, or with a server error other than a
// gateway or availability failure, ends the walk of that content only: the
// item was removed or made private mid-history. Every other failure aborts
// the harvest. Malformed responses are always fatal.
//
// # Example Usage
//
//	cfg, _ := confluence.ParseConfig(source)
//	h := confluence.New(cfg, transport)
//
//	for env, err := range h.Harvest(ctx, domain.CategoryHistoricalContent, checkpoint) {
//	    if err != nil {
//	        return err
//	    }
//	    // Process envelope
//	}
package confluence
