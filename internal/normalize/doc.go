// Package normalize converts raw JSON collections fetched from the backend
// into canonical model records.
//
// Normalization never fails. Malformed fields degrade to zero, nil or the
// "-" sentinel, and a payload that is not a list becomes an empty list.
package normalize
