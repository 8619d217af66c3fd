// Package catalog fetches the most recent published release of a repository
// from the hosting platform's REST API. Every call is a fresh, unauthenticated
// GET; nothing is cached.
package catalog
