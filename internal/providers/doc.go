// Package providers defines the contract every subtitle source adapter
// implements: list candidates for a video, compute each candidate's
// match tags, and download raw subtitle content. The shared error
// taxonomy lets callers distinguish fatal misconfiguration from
// transient rate limiting so a provider outage degrades to fewer
// candidates instead of failing the whole search.
package providers
