// Package customer stores the one-to-one customer record of a user.
//
// Service validates ids, checks the user directory before creating a record
// and returns *apperror.Error values for missing input (400), unknown users or
// customers (404) and duplicates (409).
package customer
