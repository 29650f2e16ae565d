// Package discourse implements a harvester for the posts of a Discourse
// discussion board.
//
// Topics are listed from latest.json, newest activity first, page after page
// while the server advertises more topics. Topics whose last post predates
// the checkpoint are skipped. For every remaining topic the posts embedded in
// the topic document are filtered by their update time; the posts beyond the
// embedded chunk are fetched one by one, newest first, until one predates
// the checkpoint.
//
// A topic answered with 404 or a server error is skipped. Every other
// failure aborts the harvest.
package discourse
