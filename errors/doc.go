// Package errors provides the structured error taxonomy used across toolreg.
//
// Registry resolution and trust evaluation have very few failure modes, and none
// of them are transient: nothing here performs I/O that can be retried. Errors are
// therefore classified only by what the caller should do with them.
//
// # Error Categories
//
//   - Permanent: the input is wrong and will stay wrong (unknown tool, bad URL, bad data file)
//   - Internal: an invariant of the compiled-in data or the program itself was violated
//
// # Error Codes
//
//   - NOT_FOUND: a short name has no registry entry
//   - MALFORMED_URL: a plugin remote could not be parsed
//   - INVALID_INPUT: a registry or settings file failed validation
//   - UNSUPPORTED: a backend kind or operating system is not supported
//   - INTERNAL: unexpected failure
//
// # Usage
//
//	err := errors.NotFound("tool not found in registry: poetry",
//	    errors.WithMetadata("name", "poetry"))
//
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // report to the user
//	}
package errors
