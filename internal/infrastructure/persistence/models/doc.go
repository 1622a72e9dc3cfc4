// Package models contains GORM persistence models that map to database tables.
// Domain types stay free of ORM tags; each model converts itself with
// FromDomain and ToDomain.
//
// - base.go: shared identity, version and tenant columns
// - modifier.go: sales area modifier catalog
// - settlement.go: payment submission ledger
package models
