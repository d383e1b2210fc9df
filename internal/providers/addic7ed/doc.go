// Package addic7ed scrapes the Addic7ed website for subtitle candidates.
// The site has no API: search results are parsed out of the episode and
// movie pages, downloads require a logged-in session, and a strict daily
// download quota applies.
package addic7ed
