// Package report defines the CI report payload exchanged between producers,
// the message queue and storage drivers.
//
// A report is a JSON object graph tagged with an I/O schema version:
//
//	{
//	    "version": {"major": 4, "minor": 1},
//	    "checkouts": [{"id": "c1", "origin": "ci"}],
//	    "builds":    [{"id": "b1", "origin": "ci", "checkout_id": "c1"}],
//	    "tests":     [{"id": "t1", "origin": "ci", "build_id": "b1", "status": "FAIL"}]
//	}
//
// Supported versions are 3.0, 4.0 and 4.1 (Latest). Older payloads are
// upgraded with Upgrade or UpgradeInPlace; Validate accepts any supported
// version while ValidateLatest only accepts Latest.
//
// # Object graph
//
// Objects in different collections link to each other through identifier
// fields (a build points to its checkout through "checkout_id"). Relations
// lists those links, and Chunks splits a report into pieces holding a bounded
// number of objects each.
//
// # Errors
//
// Validation failures wrap ErrInvalid, payloads tagged with an unknown
// version wrap ErrUnsupportedVersion. Check with errors.Is.
package report
