// Package validator builds small declarative rules and evaluates them.
//
//	err := validator.Check(
//		validator.Required("user", userID).WithMessage("Please enter user id!"),
//		validator.ObjectID("user", userID).WithMessage("Invalid user id!"),
//	)
//
// Apply collects every failure into ValidationErrors. Check is the variant used
// by services: it turns the first failure into a 400 *apperror.Error.
package validator
