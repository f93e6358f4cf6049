// Package handlers implements the HTTP surface of the error catalog.
//
// Catalog failures carry a numeric code from the catalog. The keys below are
// for transport-only conditions that have no catalog entry; they are sent in
// the same envelope with no code:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "key": "method_not_allowed",
//	  "message": "method not allowed"
//	}
package handlers

const (
	KeyNotFound         = "not_found"
	KeyMethodNotAllowed = "method_not_allowed"
	KeyInternal         = "internal_error"
)
