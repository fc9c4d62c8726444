// Package store defines the persistence contract for parameters, their attached
// validators and their history, plus the transaction helper the service layer
// uses to make a parameter write atomic.
package store
