// Package archive streams filesystem trees into tar archives and back.
//
// Packing is lazy: Pack and Compress return a Stream whose bytes are produced
// by a goroutine as the consumer reads, so an upload can start before the tree
// walk finishes and nothing is buffered beyond the pipe. Unpack is the inverse
// and extracts through an os.Root, so archive entries can never escape the
// extraction directory.
//
// # Layout
//
// A directory archive holds the subtree with names relative to the directory
// itself. A file archive holds exactly one entry, the file's base name, so it
// can be extracted into the file's parent without touching siblings.
//
// # Errors
//
//   - ErrCorrupt: malformed or truncated tar data, or unsafe entry names
//   - ErrDecompression: the gzip layer failed
//   - ErrCompressionMismatch: gzip data was supplied as a plain tar
//   - ErrExtract: the filesystem rejected a write
package archive
