// Package snapshot fetches the raw collections the engine works on and
// normalizes them into one immutable Snapshot.
package snapshot

import (
	"errors"
	"time"

	"github.com/cleared-dev/receivables/internal/directory"
	"github.com/cleared-dev/receivables/internal/model"
	"github.com/cleared-dev/receivables/internal/normalize"
)

// Collection names a backend collection.
type Collection string

const (
	Invoices  Collection = "invoices"
	Payments  Collection = "payments"
	Clients   Collection = "clients"
	Projects  Collection = "projects"
	Orders    Collection = "orders"
	Contracts Collection = "contracts"
	Expenses  Collection = "expenses"
)

// Collections lists every collection a Snapshot holds.
var Collections = []Collection{Invoices, Payments, Clients, Projects, Orders, Contracts, Expenses}

var (
	// ErrUnknownCollection is returned by sources asked for a collection
	// outside Collections.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrUnsupportedSource is returned by Open for an unknown source type.
	ErrUnsupportedSource = errors.New("unsupported source type")
)

// Valid reports whether c is one of Collections.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// Snapshot is a consistent set of normalized collections. A refreshed
// snapshot replaces the previous one entirely.
type Snapshot struct {
	Invoices  []model.Invoice
	Payments  []model.Payment
	Clients   []model.Client
	Projects  []model.Project
	Orders    []model.Financial
	Contracts []model.Financial
	Expenses  []model.Financial

	FetchedAt time.Time
	// Failures maps collections that could not be fetched to the error
	// message. Those collections are empty.
	Failures map[Collection]string
}

// FromRaw normalizes raw payloads into a Snapshot. Collections missing
// from raw are empty.
func FromRaw(raw map[Collection][]byte) *Snapshot {
	return &Snapshot{
		Invoices:  normalize.Invoices(raw[Invoices]),
		Payments:  normalize.Payments(raw[Payments]),
		Clients:   normalize.Clients(raw[Clients]),
		Projects:  normalize.Projects(raw[Projects]),
		Orders:    normalize.Orders(raw[Orders]),
		Contracts: normalize.Contracts(raw[Contracts]),
		Expenses:  normalize.Expenses(raw[Expenses]),
		Failures:  map[Collection]string{},
	}
}

// Directory returns a client and project lookup over the snapshot.
func (s *Snapshot) Directory() *directory.Directory {
	return directory.New(s.Clients, s.Projects)
}

// Failed reports whether c could not be fetched.
func (s *Snapshot) Failed(c Collection) bool {
	_, ok := s.Failures[c]
	return ok
}
