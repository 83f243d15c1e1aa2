// Package share builds canonical outbound links and passes them to the OS
// share sheet.
//
// Shared links always use the public https form on the production domain,
// https://movieclub.app/u/mikevocalz, never movieclub://u/mikevocalz.
package share
