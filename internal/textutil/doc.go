// Package textutil handles font file names that end up on disk, inside
// archives, or typed back by a user.
//
// Stored names keep their exact bytes and are only reduced to a single path
// segment. NFC normalization is used for matching user input against stored
// names, so a composed and a decomposed spelling find the same file.
package textutil
